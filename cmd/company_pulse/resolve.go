package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/observability"
)

var (
	resolveCreate bool
	resolveTicker string
	resolveJSON   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <company name>",
	Short: "Resolve a free-text company name",
	Long:  "Validates and normalizes a company name and lists the known companies it matches. With --create, stores it when nothing matches confidently.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveCreate, "create", false, "Create the company when no confident match exists")
	resolveCmd.Flags().StringVar(&resolveTicker, "ticker", "", "Ticker symbol for a created company")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print JSON instead of a summary")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resolver := a.news.Resolver()
	res, err := resolver.Resolve(cmd.Context(), name)
	if err != nil {
		return err
	}

	if resolveCreate {
		var ticker *string
		if resolveTicker != "" {
			ticker = &resolveTicker
		}
		company, err := resolver.FindOrCreate(cmd.Context(), name, ticker)
		if err != nil {
			return err
		}
		if !resolveJSON {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Company #%d: %s\n", company.ID, company.Name)
		}
	}

	if resolveJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintResolution(res)
	return nil
}
