package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MakikoOhashi/lexidrill/internal/fetch"
	"github.com/MakikoOhashi/lexidrill/internal/ingestion"
	"github.com/MakikoOhashi/lexidrill/internal/logging"
	"github.com/MakikoOhashi/lexidrill/internal/observability"
	"github.com/MakikoOhashi/lexidrill/internal/pipeline"
)

var (
	generateTask    string
	generateSource  string
	generateURL     string
	generateTheme   string
	generateHTML    bool
	generateVerbose bool
)

// articleFetcher caches fetched pages so repeated runs against the same URL
// within one process hit the network once.
var articleFetcher = fetch.NewCachedFetcher(nil)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one exercise from a source text",
	Long:  "Generate a cloze or multiple-choice exercise from a source file or URL and print the result as JSON.",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTask, "task", "cloze", "Task type: cloze or choice")
	generateCmd.Flags().StringVar(&generateSource, "source", "", "Path to the source text file")
	generateCmd.Flags().StringVar(&generateURL, "url", "", "URL to fetch the source article from")
	generateCmd.Flags().StringVar(&generateTheme, "theme", "", "Theme for the rewritten passage")
	generateCmd.Flags().BoolVar(&generateHTML, "html", false, "Treat the source file as HTML and extract its text")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Print the item summary and generation trail")
	generateCmd.MarkFlagsOneRequired("source", "url")
	generateCmd.MarkFlagsMutuallyExclusive("source", "url")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	source, err := loadSource(ctx)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Server.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	client, err := buildClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	engine := pipeline.NewEngine(cfg, client, buildEmbedder(cfg), logger)
	req := pipeline.Request{Source: source, Theme: generateTheme}

	var result *pipeline.Result
	switch generateTask {
	case "cloze":
		result, err = engine.GenerateCloze(ctx, req)
	case "choice":
		result, err = engine.GenerateChoice(ctx, req)
	default:
		return fmt.Errorf("unknown task %q: expected cloze or choice", generateTask)
	}
	if err != nil {
		return err
	}

	if generateVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintItem(&result.Item)
		printer.PrintWarning(result.SimilarityWarning)
		printer.PrintTrail(&result.Trail)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// loadSource reads the source text from the file or URL flag.
func loadSource(ctx context.Context) (string, error) {
	if generateURL != "" {
		result, err := articleFetcher.Article(ctx, generateURL)
		if err != nil {
			return "", err
		}
		return result.Text, nil
	}

	data, err := os.ReadFile(generateSource)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	if generateHTML {
		text, err := ingestion.FromHTML(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to extract text from HTML: %w", err)
		}
		return text, nil
	}
	return string(data), nil
}
