package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/faktajouren/internal/browse"
	"github.com/TobiSchelling/faktajouren/internal/config"
	"github.com/TobiSchelling/faktajouren/internal/database"
	"github.com/TobiSchelling/faktajouren/internal/preview"
	"github.com/TobiSchelling/faktajouren/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	dbPath     string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "faktajouren",
	Short:   "Browse the Faktajouren fact-check archive",
	Long:    "faktajouren searches, filters and visualizes the Faktajouren fact-check database.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			log.SetFlags(log.LstdFlags)
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}

		if verbose || cfg.Debug() {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the Faktajouren SQLite file (overrides config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("faktajouren", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/faktajouren/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point database.path at your Faktajouren.db.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status and tag counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		n, err := db.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting rows: %w", err)
		}

		b := newBrowser(db)
		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("Articles: %s\n\n", humanize.Comma(int64(n)))
		fmt.Println("Distinct tags:")
		for _, c := range database.Filterable {
			freq, err := b.Tags(ctx, c)
			if err != nil {
				return fmt.Errorf("aggregating %s: %w", c, err)
			}
			fmt.Printf("  %-22s %s (%s occurrences)\n", c.Label()+":",
				humanize.Comma(int64(len(freq))), humanize.Comma(int64(freq.Total())))
		}
		return nil
	},
}

// --- search command ---

var searchPatterns = make(map[database.Column]*string, len(database.Filterable))

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print articles matching substring filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}

		filter := make(database.Filter)
		for c, p := range searchPatterns {
			if *p != "" {
				filter[c] = *p
			}
		}

		res, err := newBrowser(db).Search(cmd.Context(), filter)
		if err != nil {
			return err
		}
		printArticles(cmd.OutOrStdout(), res.Articles)
		return nil
	},
}

func init() {
	for _, c := range database.Filterable {
		p := new(string)
		searchPatterns[c] = p
		searchCmd.Flags().StringVar(p, flagName(c), "", "Substring filter on "+c.Label())
	}
}

// flagName turns a column into a CLI flag, e.g. Veckans_ord -> veckans-ord.
func flagName(c database.Column) string {
	return strings.ReplaceAll(c.Param(), "_", "-")
}

func printArticles(w io.Writer, articles []database.Article) {
	for _, a := range articles {
		fmt.Fprintf(w, "%s - %s\n", a.Nummer, a.Innehall)
		fmt.Fprintf(w, "  Begrepp: %s\n", a.Begrepp)
		fmt.Fprintf(w, "  Veckans ord: %s\n", a.VeckansOrd)
		fmt.Fprintf(w, "  Fria sökord / termer: %s\n", a.FriaSokordTermer)
		fmt.Fprintf(w, "  Faktcheck: %s\n", a.Faktcheck)
		fmt.Fprintf(w, "  Länk: %s\n\n", a.Lank)
	}
	fmt.Fprintf(w, "%s matching articles\n", humanize.Comma(int64(len(articles))))
}

// --- tags command ---

var tagsLimit int

var tagsCmd = &cobra.Command{
	Use:   "tags [column]",
	Short: "Print tag frequencies for a column, most frequent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column, err := database.ParseColumn(args[0])
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}

		freq, err := newBrowser(db).Tags(cmd.Context(), column)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range freq.Top(tagsLimit) {
			fmt.Fprintf(out, "%6d  %s\n", e.Count, e.Tag)
		}
		return nil
	},
}

func init() {
	tagsCmd.Flags().IntVarP(&tagsLimit, "limit", "n", 0, "Show only the N most frequent tags (0 = all)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		opts := server.Options{
			ChartColumn:       cfg.ChartColumn(),
			ChartLimit:        cfg.Visuals.ChartLimit,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}
		if cfg.Preview.Enabled {
			opts.Previewer = preview.NewFetcher(cfg.PreviewTimeout(), cfg.Preview.MaxChars)
		}

		fmt.Printf("Starting server at http://%s:%d\n", cfg.Server.Host, port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(newBrowser(db), opts, cfg.Server.Host, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.Database.Path, database.Options{CaseSensitive: cfg.Search.CaseSensitive})
}

func newBrowser(db *database.DB) *browse.Browser {
	return browse.New(db, browse.Settings{
		CloudColumns:  cfg.CloudColumns(),
		CloudMaxWords: cfg.Visuals.CloudMaxWords,
	})
}
