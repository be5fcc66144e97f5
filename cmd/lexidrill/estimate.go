package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MakikoOhashi/lexidrill/internal/target"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [files...]",
	Short: "Estimate a difficulty target from reference texts",
	Long:  "Estimate a target difficulty profile from 1-3 reference text files and print it as JSON.",
	Args:  cobra.RangeArgs(1, 3),
	RunE:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sources := make([]string, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, string(data))
	}

	profile, err := target.NewEstimator(cfg.EstimateOptions()).Estimate(context.Background(), sources)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}
