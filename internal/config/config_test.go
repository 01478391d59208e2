package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TobiSchelling/faktajouren/internal/database"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Database.Path != "Faktajouren.db" {
		t.Errorf("expected database path 'Faktajouren.db', got %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("expected port 8501, got %d", cfg.Server.Port)
	}
	want := []database.Column{database.Begrepp, database.Innehall, database.VeckansOrd}
	if diff := cmp.Diff(want, cfg.CloudColumns()); diff != "" {
		t.Errorf("cloud columns mismatch (-want +got):\n%s", diff)
	}
	if cfg.ChartColumn() != database.Begrepp {
		t.Errorf("expected chart column Begrepp, got %q", cfg.ChartColumn())
	}
	if cfg.Search.CaseSensitive {
		t.Error("expected case-insensitive search by default")
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
database:
  path: /srv/faktajouren/Faktajouren.db
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Database.Path != "/srv/faktajouren/Faktajouren.db" {
		t.Errorf("unexpected path %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Visuals.ChartLimit != 20 {
		t.Errorf("expected default chart_limit 20, got %d", cfg.Visuals.ChartLimit)
	}
	if cfg.PreviewTimeout().Seconds() != 15 {
		t.Errorf("expected 15s preview timeout, got %v", cfg.PreviewTimeout())
	}
}

func TestParseRejectsUnknownColumn(t *testing.T) {
	_, err := parse([]byte("visuals:\n  cloud_columns: [Begrepp, Titel]\n"))
	if err == nil {
		t.Error("expected error for unknown cloud column")
	}
	_, err = parse([]byte("visuals:\n  chart_column: Innehåll\n"))
	if err == nil {
		t.Error("expected error for label used as chart column")
	}
}

func TestParseRejectsBadPort(t *testing.T) {
	if _, err := parse([]byte("server:\n  port: 70000\n")); err == nil {
		t.Error("expected error for out of range port")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Visuals.CloudColumns) != 3 {
		t.Error("expected cloud columns to be populated from file")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "Faktajouren.db" {
		t.Errorf("expected default path, got %q", cfg.Database.Path)
	}
}

func TestResolveExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestDebug(t *testing.T) {
	cfg := &Config{Logging: Logging{Level: "debug"}}
	if !cfg.Debug() {
		t.Error("expected debug level to be recognised")
	}
}
