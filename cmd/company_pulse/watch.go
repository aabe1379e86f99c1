package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/scheduler"
)

var (
	watchOnce      bool
	watchCompanies []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh news for the watchlist on a cron schedule",
	Long: `Fetches fresh news for every company on the watchlist (watchlist.companies in
the config, or --company) on watchlist.schedule until interrupted. With --once
the watchlist is refreshed a single time.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Refresh once and exit")
	watchCmd.Flags().StringSliceVar(&watchCompanies, "company", nil, "Companies to watch (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(watchCompanies) > 0 {
		cfg.Watchlist.Companies = watchCompanies
	}
	if len(cfg.Watchlist.Companies) == 0 {
		return fmt.Errorf("watchlist is empty: set watchlist.companies in the config or pass --company")
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := scheduler.New(a.news, cfg.Watchlist)
	if err != nil {
		return err
	}

	if watchOnce {
		return sched.RefreshWatchlist(cmd.Context())
	}

	if err := sched.AddWatchlist(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	for _, job := range sched.ListJobs() {
		log.Printf("[APP] Job %s next runs at %s", job.Name, job.NextRun.Format("2006-01-02 15:04 MST"))
	}

	<-ctx.Done()
	log.Println("[APP] Waiting for running jobs to finish...")
	<-sched.Stop().Done()
	return nil
}
