// Package main is the entry point for the lexidrill exercise generator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MakikoOhashi/lexidrill/internal/config"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/MakikoOhashi/lexidrill/internal/llm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lexidrill",
	Short: "Difficulty-regulated language exercise generator",
	Long:  "lexidrill generates cloze and multiple-choice language-learning exercises whose difficulty matches a statistically derived target, with anti-plagiarism gating against the source material.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to TOML config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat("lexidrill.toml"); err == nil {
			path = "lexidrill.toml"
		}
	}
	return config.Load(path)
}

// buildClient creates the Gemini client when an API key is configured.
// Without one the engine runs on deterministic candidates only.
func buildClient(ctx context.Context) (llm.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, nil
	}
	return llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
}

// buildEmbedder selects the embedding capability: the remote service when
// configured, otherwise the deterministic hash-seeded stand-in.
func buildEmbedder(cfg config.Config) embeddings.Embedder {
	if cfg.Embedding.BaseURL != "" {
		return embeddings.NewHTTPEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	}
	return embeddings.NewHashEmbedder()
}
