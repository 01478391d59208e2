package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrSchema is returned when the file does not hold the faktajouren table
// or the table lacks one of the expected columns.
var ErrSchema = errors.New("unexpected schema")

// hasTable reports whether the faktajouren table exists.
func hasTable(conn *sql.DB) (bool, error) {
	var count int
	err := conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", TableName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: reading sqlite_master: %v", ErrStorageUnavailable, err)
	}
	return count > 0, nil
}

// tableColumns returns the column names of the faktajouren table as stored.
func tableColumns(conn *sql.DB) ([]string, error) {
	rows, err := conn.Query("SELECT name FROM pragma_table_info(?)", TableName)
	if err != nil {
		return nil, fmt.Errorf("%w: reading table info: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning table info: %v", ErrStorageUnavailable, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// checkSchema verifies the table and its seven text columns. Extra columns
// are tolerated; the external process that maintains the file may add some.
func checkSchema(conn *sql.DB) error {
	ok, err := hasTable(conn)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: table %s not found", ErrSchema, TableName)
	}

	names, err := tableColumns(conn)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[strings.ToLower(n)] = true
	}

	var missing []string
	for _, c := range Columns {
		if !present[strings.ToLower(string(c))] {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: table %s is missing columns %s", ErrSchema, TableName, strings.Join(missing, ", "))
	}

	if len(names) > len(Columns) {
		log.Printf("table %s has %d columns, only %d are read", TableName, len(names), len(Columns))
	}
	return nil
}
