package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MakikoOhashi/lexidrill/internal/logging"
	"github.com/MakikoOhashi/lexidrill/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the REST API server exposing scoring, target estimation, and exercise generation.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger, err := logging.New(cfg.Server.Development)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	client, err := buildClient(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client == nil {
		logger.Warn("GEMINI_API_KEY not set, generation runs deterministic-only")
	}

	return server.New(cfg, client, buildEmbedder(cfg), logger).Start()
}
