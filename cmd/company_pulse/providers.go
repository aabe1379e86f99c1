package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/observability"
)

var providersJSON bool

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Probe every configured generation provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		health := a.orchestrator.CheckHealth(cmd.Context())
		if providersJSON {
			return writeJSON(cmd.OutOrStdout(), health)
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintProviderHealth(health)
		return nil
	},
}

func init() {
	providersCmd.Flags().BoolVar(&providersJSON, "json", false, "Print JSON instead of a summary")
	rootCmd.AddCommand(providersCmd)
}
