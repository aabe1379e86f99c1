package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/db"
	"github.com/jonathan/company-pulse/internal/metrics"
	"github.com/jonathan/company-pulse/internal/scheduler"
	"github.com/jonathan/company-pulse/internal/server"
	"github.com/jonathan/company-pulse/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
	serveWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for company resolution,
news queries and content generation. With --watch the configured watchlist is
refreshed on its cron schedule while the server runs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before starting")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Refresh the watchlist on its schedule")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	if serveMigrate {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--migrate requires DATABASE_URL")
		}
		version, dirty, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		log.Printf("[APP] Database at migration version %d (dirty=%v)", version, dirty)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Init(version)

	if serveWatch {
		sched, err := scheduler.New(a.news, cfg.Watchlist)
		if err != nil {
			return err
		}
		if err := sched.AddWatchlist(); err != nil {
			return fmt.Errorf("failed to schedule watchlist: %w", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		RateLimit: ratelimit.LoadConfig(os.LookupEnv),
	}, a.news, a.orchestrator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
