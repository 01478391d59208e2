// Package databasetest builds throwaway faktajouren SQLite files for tests.
package databasetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/TobiSchelling/faktajouren/internal/database"
)

// Schema mirrors the table maintained by the external editorial process.
// Columns carry no declared type, so SQLite stores every value with the
// storage class it was written with instead of coercing it to TEXT.
const Schema = `
CREATE TABLE faktajouren (
    Nummer,
    Innehall,
    Begrepp,
    Veckans_ord,
    Fria_sokord_termer,
    Faktcheck,
    Lank
)`

// NewFile writes a database holding the given articles and returns its path.
func NewFile(t testing.TB, articles ...database.Article) string {
	t.Helper()
	rows := make([][]any, len(articles))
	for i, a := range articles {
		rows[i] = []any{a.Nummer, a.Innehall, a.Begrepp, a.VeckansOrd, a.FriaSokordTermer, a.Faktcheck, a.Lank}
	}
	return NewRawFile(t, rows...)
}

// NewRawFile writes a database from raw column values in schema order, so
// tests can store NULLs and non-text values.
func NewRawFile(t testing.TB, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Faktajouren.db")
	WriteFile(t, path, rows...)
	return path
}

// WriteFile creates a fixture database at path from raw column values.
func WriteFile(t testing.TB, path string, rows ...[]any) {
	t.Helper()
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(Schema); err != nil {
		t.Fatalf("create fixture table: %v", err)
	}
	for _, r := range rows {
		if _, err := conn.Exec(`INSERT INTO faktajouren VALUES (?, ?, ?, ?, ?, ?, ?)`, r...); err != nil {
			t.Fatalf("insert fixture row: %v", err)
		}
	}
}

// Open writes a fixture database and opens it with default options.
func Open(t testing.TB, articles ...database.Article) *database.DB {
	t.Helper()
	db, err := database.Open(NewFile(t, articles...), database.Options{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

// Sample is a small, realistic set of rows shared by package tests.
func Sample() []database.Article {
	return []database.Article{
		{
			Nummer:           "1",
			Innehall:         "Vaccin och autism",
			Begrepp:          "källkritik, vaccin",
			VeckansOrd:       "desinformation",
			FriaSokordTermer: "hälsa, forskning",
			Faktcheck:        "Påståendet är **falskt**.",
			Lank:             "https://example.se/1",
		},
		{
			Nummer:           "2",
			Innehall:         "Klimatet och solen",
			Begrepp:          "klimat, källkritik",
			VeckansOrd:       "konsensus",
			FriaSokordTermer: "klimat",
			Faktcheck:        "Missvisande.",
			Lank:             "https://example.se/2",
		},
		{
			Nummer:           "10",
			Innehall:         "Bilder från valet",
			Begrepp:          "bildmanipulation, källkritik, val",
			VeckansOrd:       "deepfake, desinformation",
			FriaSokordTermer: "",
			Faktcheck:        "Bilden är manipulerad.",
			Lank:             "https://example.se/10",
		},
	}
}
