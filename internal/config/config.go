package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/faktajouren/internal/database"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Database Database `yaml:"database"`
	Search   Search   `yaml:"search"`
	Visuals  Visuals  `yaml:"visuals"`
	Server   Server   `yaml:"server"`
	Preview  Preview  `yaml:"preview"`
	Logging  Logging  `yaml:"logging"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Search struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

type Visuals struct {
	CloudColumns  []string `yaml:"cloud_columns"`
	CloudMaxWords int      `yaml:"cloud_max_words"`
	ChartColumn   string   `yaml:"chart_column"`
	ChartLimit    int      `yaml:"chart_limit"`
}

type Server struct {
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type Preview struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	MaxChars       int  `yaml:"max_chars"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for faktajouren.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "faktajouren")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/faktajouren/config.yaml > ./config.yaml
// With nothing found it returns "" and the built-in defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Database: Database{Path: "Faktajouren.db"},
		Visuals: Visuals{
			CloudColumns:  []string{"Begrepp", "Innehall", "Veckans_ord"},
			CloudMaxWords: 60,
			ChartColumn:   "Begrepp",
			ChartLimit:    20,
		},
		Server: Server{
			Host:      "127.0.0.1",
			Port:      8501,
			RateLimit: RateLimit{RequestsPerSecond: 10, Burst: 20},
		},
		Preview: Preview{Enabled: true, TimeoutSeconds: 15, MaxChars: 600},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, name := range c.Visuals.CloudColumns {
		if _, err := database.ParseColumn(name); err != nil {
			return fmt.Errorf("visuals.cloud_columns: %w", err)
		}
	}
	if _, err := database.ParseColumn(c.Visuals.ChartColumn); err != nil {
		return fmt.Errorf("visuals.chart_column: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// CloudColumns returns the configured word cloud columns. Names were
// checked when the config was parsed.
func (c *Config) CloudColumns() []database.Column {
	cols := make([]database.Column, 0, len(c.Visuals.CloudColumns))
	for _, name := range c.Visuals.CloudColumns {
		col, _ := database.ParseColumn(name)
		cols = append(cols, col)
	}
	return cols
}

// ChartColumn returns the configured bar chart column.
func (c *Config) ChartColumn() database.Column {
	col, _ := database.ParseColumn(c.Visuals.ChartColumn)
	return col
}

// PreviewTimeout returns the link preview HTTP timeout.
func (c *Config) PreviewTimeout() time.Duration {
	return time.Duration(c.Preview.TimeoutSeconds) * time.Second
}

// Debug reports whether the log level asks for file:line prefixes.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Logging.Level, "DEBUG")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
