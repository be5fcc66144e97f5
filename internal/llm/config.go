package llm

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierLite is for cheap structured extraction (blank selection, parsing).
	TierLite ModelTier = "lite"
	// TierStandard is for passage generation and themed rewrites.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for repair passes that need careful reasoning.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the provider model assignment per tier.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini tier mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model for a tier, falling back through cheaper tiers.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
