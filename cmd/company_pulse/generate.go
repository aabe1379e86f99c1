package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/observability"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

var (
	highlightsCompany string
	highlightsTitle   string
	highlightsFile    string
	highlightsMax     int
	highlightsJSON    bool

	socialCompany    string
	socialFile       string
	socialURL        string
	socialPlatforms  []string
	socialJSON       bool
	generatePlatform []string
	generateJSON     bool
)

var highlightsCmd = &cobra.Command{
	Use:   "highlights",
	Short: "Extract key highlights from article text",
	Long:  "Reads article text from --in (or stdin with -) and extracts highlights through the generation providers, falling back when quality is too low.",
	Args:  cobra.NoArgs,
	RunE:  runHighlights,
}

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Write social media posts from highlights",
	Long:  "Reads a JSON array of highlights from --in (or stdin with -) and writes one post per requested platform.",
	Args:  cobra.NoArgs,
	RunE:  runSocial,
}

var generateCmd = &cobra.Command{
	Use:   "generate <article id>",
	Short: "Extract highlights and write posts for a stored article",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	highlightsCmd.Flags().StringVar(&highlightsCompany, "company", "", "Company the article is about (required)")
	highlightsCmd.Flags().StringVar(&highlightsTitle, "title", "", "Article title")
	highlightsCmd.Flags().StringVarP(&highlightsFile, "in", "i", "-", "File with the article text, - for stdin")
	highlightsCmd.Flags().IntVar(&highlightsMax, "max", 0, "Maximum highlights (default 5)")
	highlightsCmd.Flags().BoolVar(&highlightsJSON, "json", false, "Print JSON instead of a summary")
	if err := highlightsCmd.MarkFlagRequired("company"); err != nil {
		panic(fmt.Sprintf("failed to mark company flag as required: %v", err))
	}

	socialCmd.Flags().StringVar(&socialCompany, "company", "", "Company the posts are about (required)")
	socialCmd.Flags().StringVarP(&socialFile, "in", "i", "-", "File with a JSON array of highlights, - for stdin")
	socialCmd.Flags().StringVar(&socialURL, "url", "", "Article URL to reference in the posts")
	socialCmd.Flags().StringSliceVarP(&socialPlatforms, "platforms", "p", []string{"twitter", "linkedin"}, "Platforms to write for")
	socialCmd.Flags().BoolVar(&socialJSON, "json", false, "Print JSON instead of a summary")
	if err := socialCmd.MarkFlagRequired("company"); err != nil {
		panic(fmt.Sprintf("failed to mark company flag as required: %v", err))
	}

	generateCmd.Flags().StringSliceVarP(&generatePlatform, "platforms", "p", []string{"twitter", "linkedin"}, "Platforms to write for")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print JSON instead of a summary")

	rootCmd.AddCommand(highlightsCmd, socialCmd, generateCmd)
}

func runHighlights(cmd *cobra.Command, _ []string) error {
	content, err := readInput(cmd.InOrStdin(), highlightsFile)
	if err != nil {
		return err
	}
	req := types.HighlightRequest{
		CompanyName:   highlightsCompany,
		Title:         highlightsTitle,
		Content:       string(content),
		MaxHighlights: highlightsMax,
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

	out, err := a.orchestrator.ExtractHighlights(cmd.Context(), req)
	if err != nil {
		return err
	}
	if highlightsJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHighlights(out)
	return nil
}

func runSocial(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd.InOrStdin(), socialFile)
	if err != nil {
		return err
	}
	var highlights []types.Highlight
	if err := json.Unmarshal(data, &highlights); err != nil {
		return fmt.Errorf("failed to parse highlights JSON: %w", err)
	}
	req := types.SocialRequest{
		CompanyName: socialCompany,
		ArticleURL:  socialURL,
		Highlights:  highlights,
		Platforms:   toPlatforms(socialPlatforms),
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

	out, err := a.orchestrator.GenerateSocialContent(cmd.Context(), req)
	if err != nil {
		return err
	}
	if socialJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPosts(out)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("article id must be a positive integer, got %q", args[0])
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
	res, err := a.news.GenerateForArticleWithProgress(cmd.Context(), id,
		types.GenerateContentRequest{Platforms: toPlatforms(generatePlatform)}, progress)
	if err != nil {
		return err
	}
	if generateJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintHighlights(res.Highlights)
	p.PrintPosts(res.Social)
	return nil
}

// readInput reads path, or in when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return data, nil
}

func toPlatforms(names []string) []types.Platform {
	out := make([]types.Platform, len(names))
	for i, n := range names {
		out[i] = types.Platform(n)
	}
	return out
}

func logProgress(e pipeline.ProgressEvent) {
	log.Printf("[%s] %s", e.Step, e.Message)
}
