// Package config holds the immutable process-wide configuration. Every tuned
// threshold lives here and is passed into the core explicitly at call time;
// there are no hidden module-level defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Weights    WeightsConfig    `toml:"weights"`
	Similarity SimilarityConfig `toml:"similarity"`
	Generation GenerationConfig `toml:"generation"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Combo      ComboConfig      `toml:"combo"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port        int  `toml:"port" validate:"min=1,max=65535"`
	Development bool `toml:"development"`
}

// WeightsConfig is the default difficulty weighting, overridable per request.
type WeightsConfig struct {
	WL float64 `toml:"wl" validate:"min=0"`
	WS float64 `toml:"ws" validate:"min=0"`
	WA float64 `toml:"wa" validate:"min=0"`
	WR float64 `toml:"wr" validate:"min=0"`
}

// SimilarityConfig holds the per-task acceptance bands. Cloze bands are wider
// than choice bands: paraphrase tolerance differs between the two tasks.
type SimilarityConfig struct {
	Cloze  similarity.Band `toml:"cloze"`
	Choice similarity.Band `toml:"choice"`
}

// GenerationConfig bounds the retry state machine.
type GenerationConfig struct {
	MaxAttempts      int `toml:"max_attempts" validate:"min=1,max=5"`
	SoftenRounds     int `toml:"soften_rounds" validate:"min=0,max=4"`
	WordCountWindow  int `toml:"word_count_window" validate:"min=1"`
	MaxReasoningStep int `toml:"max_reasoning_steps" validate:"min=1"`
}

// EmbeddingConfig selects the embedding capability.
type EmbeddingConfig struct {
	Dim     int    `toml:"dim" validate:"min=8"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// ComboConfig carries the empirically tuned thresholds for the Japanese
// statement-combination variant. These are configuration, not invariants:
// they should be re-validated against a labeled corpus before being trusted.
type ComboConfig struct {
	NovelKanjiCeiling  float64 `toml:"novel_kanji_ceiling" validate:"min=0,max=1"`
	StatementSimLimit  float64 `toml:"statement_sim_limit" validate:"min=0,max=1"`
	KanjiDensityTarget float64 `toml:"kanji_density_target" validate:"gt=0,max=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Weights: WeightsConfig{
			WL: 0.30, WS: 0.25, WA: 0.25, WR: 0.20,
		},
		Similarity: SimilarityConfig{
			Cloze:  similarity.Band{MinCosine: 0.30, MaxCosine: 0.93, MaxJaccard: 0.82},
			Choice: similarity.Band{MinCosine: 0.40, MaxCosine: 0.88, MaxJaccard: 0.72},
		},
		Generation: GenerationConfig{
			MaxAttempts:      3,
			SoftenRounds:     2,
			WordCountWindow:  15,
			MaxReasoningStep: 4,
		},
		Embedding: EmbeddingConfig{Dim: 256},
		Combo: ComboConfig{
			NovelKanjiCeiling:  0.35,
			StatementSimLimit:  0.80,
			KanjiDensityTarget: 0.55,
		},
	}
}

// Load reads configuration: defaults, then the optional TOML file at path,
// then environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LEXIDRILL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LEXIDRILL_DEV"); v == "1" || v == "true" {
		cfg.Server.Development = true
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
}

// DefaultWeights converts the configured weighting into the scoring type.
func (c Config) DefaultWeights() difficulty.Weights {
	return difficulty.Weights{
		WL: c.Weights.WL,
		WS: c.Weights.WS,
		WA: c.Weights.WA,
		WR: c.Weights.WR,
	}
}

// EstimateOptions builds the component-estimation tuning from config.
func (c Config) EstimateOptions() difficulty.EstimateOptions {
	opts := difficulty.DefaultEstimateOptions()
	opts.MaxReasoningCues = c.Generation.MaxReasoningStep
	opts.KanjiDensityCeiling = c.Combo.KanjiDensityTarget
	return opts
}
