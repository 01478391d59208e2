package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TobiSchelling/faktajouren/internal/config"
	"github.com/TobiSchelling/faktajouren/internal/database"
	"github.com/TobiSchelling/faktajouren/internal/database/databasetest"
)

// writeConfig writes the built-in default config into a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, config.DefaultConfigYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command against the default config, so results do
// not depend on a config file in the user's home or working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	t.Cleanup(func() {
		for _, p := range searchPatterns {
			*p = ""
		}
		tagsLimit = 0
		dbPath = ""
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	path := databasetest.NewFile(t, databasetest.Sample()...)

	out, err := run(t, "--db", path, "search", "--nummer", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1 - Vaccin och autism") || !strings.Contains(out, "10 - Bilder från valet") {
		t.Errorf("expected rows 1 and 10, got:\n%s", out)
	}
	if strings.Contains(out, "2 - Klimatet") {
		t.Errorf("did not expect row 2, got:\n%s", out)
	}
	if !strings.Contains(out, "2 matching articles") {
		t.Errorf("expected match count, got:\n%s", out)
	}
}

func TestTagsCommand(t *testing.T) {
	path := databasetest.NewFile(t,
		database.Article{Nummer: "1", Begrepp: "x, y"},
		database.Article{Nummer: "2", Begrepp: "y, z"},
	)

	out, err := run(t, "--db", path, "tags", "begrepp", "--limit", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "2  y" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTagsCommandUnknownColumn(t *testing.T) {
	path := databasetest.NewFile(t)
	if _, err := run(t, "--db", path, "tags", "Titel"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestCommandsIgnoreHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "faktajouren")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	strict := []byte("search:\n  case_sensitive: true\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), strict, 0o644); err != nil {
		t.Fatal(err)
	}
	path := databasetest.NewFile(t, database.Article{Nummer: "1", Begrepp: "Vaccin"})

	out, err := run(t, "--db", path, "search", "--begrepp", "vaccin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1 matching articles") {
		t.Errorf("expected the default case folding, got:\n%s", out)
	}
}

func TestFlagName(t *testing.T) {
	if got := flagName(database.FriaSokordTermer); got != "fria-sokord-termer" {
		t.Errorf("unexpected flag name %q", got)
	}
}
