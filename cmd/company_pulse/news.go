package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/observability"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

var (
	newsMaxArticles  int
	newsMinRelevance float64
	newsMaxAgeHours  int
	newsKeywords     []string
	newsSkipCache    bool
	newsJSON         bool
)

var newsCmd = &cobra.Command{
	Use:   "news <company name>",
	Short: "Fetch, filter and store news about a company",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNews,
}

func init() {
	newsCmd.Flags().IntVarP(&newsMaxArticles, "max", "n", 0, "Maximum articles to return (default from config)")
	newsCmd.Flags().Float64Var(&newsMinRelevance, "min-relevance", 0, "Minimum relevance between 0 and 1 (default from config)")
	newsCmd.Flags().IntVar(&newsMaxAgeHours, "max-age", 0, "Maximum article age in hours (default from config)")
	newsCmd.Flags().StringSliceVar(&newsKeywords, "require", nil, "Keywords every article must contain")
	newsCmd.Flags().BoolVar(&newsSkipCache, "skip-cache", false, "Ignore cached results")
	newsCmd.Flags().BoolVar(&newsJSON, "json", false, "Print JSON instead of a summary")
	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, args []string) error {
	req := types.NewsQueryRequest{
		Company:          strings.Join(args, " "),
		MaxArticles:      newsMaxArticles,
		MaxAgeHours:      newsMaxAgeHours,
		RequiredKeywords: newsKeywords,
		SkipCache:        newsSkipCache,
	}
	if cmd.Flags().Changed("min-relevance") {
		req.MinRelevance = &newsMinRelevance
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var progress pipeline.ProgressCallback
	if cfg.Verbose {
		progress = logProgress
	}
	res, err := a.news.FetchNewsWithProgress(cmd.Context(), req, progress)
	if err != nil {
		return err
	}

	if newsJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintNews(res)
	return nil
}
