// Package target estimates a difficulty target profile from one to three
// reference texts. Profiles are created fresh per request and never persisted.
package target

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/slots"
)

// Stability classifies confidence in the estimated target, driven purely by
// how many reference samples were provided.
type Stability string

const (
	StabilityLow    Stability = "Low"
	StabilityMedium Stability = "Medium"
	StabilityHigh   Stability = "High"
)

// Profile is the estimated difficulty target.
type Profile struct {
	Mean               difficulty.Components `json:"mean"`
	Std                difficulty.Components `json:"std"`
	AxisTolerance      difficulty.Components `json:"axis_tolerance"`
	BandMin            difficulty.Components `json:"band_min"`
	BandMax            difficulty.Components `json:"band_max"`
	Stability          Stability             `json:"stability"`
	EffectiveTolerance float64               `json:"effective_tolerance"`
	SampleCount        int                   `json:"sample_count"`
}

// EmptySourceError indicates no usable reference text.
type EmptySourceError struct{}

func (e *EmptySourceError) Error() string {
	return "no usable reference text: all sources are blank"
}

// Estimator derives deterministic difficulty samples from reference texts.
// It uses the slot extractor and the component estimation heuristic directly,
// never the full generation pipeline.
type Estimator struct {
	extractor *slots.Extractor
	opts      difficulty.EstimateOptions
}

// NewEstimator creates an estimator. The extractor runs without an LLM
// repairer: sampling must stay deterministic.
func NewEstimator(opts difficulty.EstimateOptions) *Estimator {
	return &Estimator{
		extractor: slots.NewExtractor(nil),
		opts:      opts,
	}
}

// Estimate computes a target profile from 1-3 reference texts.
func (e *Estimator) Estimate(ctx context.Context, sources []string) (*Profile, error) {
	usable := make([]string, 0, len(sources))
	for _, s := range sources {
		if strings.TrimSpace(s) != "" {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return nil, &EmptySourceError{}
	}
	if len(usable) > 3 {
		return nil, fmt.Errorf("at most 3 reference texts are supported, got %d", len(usable))
	}

	samples := make([]difficulty.Components, len(usable))
	for i, s := range usable {
		samples[i] = e.Sample(ctx, s)
	}

	mean := meanOf(samples)
	std := stdOf(samples, mean)
	n := len(samples)

	base := baseTolerance(n)
	axisTol := difficulty.Components{
		L: clampTolerance(math.Max(base, 1.5*std.L)),
		S: clampTolerance(math.Max(base, 1.5*std.S)),
		A: clampTolerance(math.Max(base, 1.5*std.A)),
		R: clampTolerance(math.Max(base, 1.5*std.R)),
	}

	return &Profile{
		Mean:          mean,
		Std:           std,
		AxisTolerance: axisTol,
		BandMin: difficulty.Components{
			L: difficulty.Clamp01(mean.L - axisTol.L),
			S: difficulty.Clamp01(mean.S - axisTol.S),
			A: difficulty.Clamp01(mean.A - axisTol.A),
			R: difficulty.Clamp01(mean.R - axisTol.R),
		},
		BandMax: difficulty.Components{
			L: difficulty.Clamp01(mean.L + axisTol.L),
			S: difficulty.Clamp01(mean.S + axisTol.S),
			A: difficulty.Clamp01(mean.A + axisTol.A),
			R: difficulty.Clamp01(mean.R + axisTol.R),
		},
		Stability:          stabilityOf(n),
		EffectiveTolerance: base,
		SampleCount:        n,
	}, nil
}

// Sample produces the deterministic difficulty sample for a single text.
// Blanks found in the text raise the ambiguity component slightly.
func (e *Estimator) Sample(ctx context.Context, text string) difficulty.Components {
	ext := e.extractor.Extract(ctx, text, nil)
	c := difficulty.EstimateComponents(ext.DisplayText, e.opts)
	bump := 0.05 * float64(len(ext.Slots))
	if bump > 0.15 {
		bump = 0.15
	}
	c.A = difficulty.Clamp01(c.A + bump)
	return c
}

// stabilityOf is a step function of sample count: one reference is Low, two
// are Medium, three are High.
func stabilityOf(n int) Stability {
	switch {
	case n <= 1:
		return StabilityLow
	case n == 2:
		return StabilityMedium
	default:
		return StabilityHigh
	}
}

// baseTolerance loosens the band when fewer references are available.
func baseTolerance(n int) float64 {
	switch {
	case n <= 1:
		return 0.20
	case n == 2:
		return 0.12
	default:
		return 0.06
	}
}

func clampTolerance(v float64) float64 {
	if v < 0.03 {
		return 0.03
	}
	if v > 0.25 {
		return 0.25
	}
	return v
}

func meanOf(samples []difficulty.Components) difficulty.Components {
	var sum difficulty.Components
	for _, s := range samples {
		sum.L += s.L
		sum.S += s.S
		sum.A += s.A
		sum.R += s.R
	}
	n := float64(len(samples))
	return difficulty.Components{L: sum.L / n, S: sum.S / n, A: sum.A / n, R: sum.R / n}
}

// stdOf is the population standard deviation, not Bessel-corrected.
func stdOf(samples []difficulty.Components, mean difficulty.Components) difficulty.Components {
	var sq difficulty.Components
	for _, s := range samples {
		sq.L += (s.L - mean.L) * (s.L - mean.L)
		sq.S += (s.S - mean.S) * (s.S - mean.S)
		sq.A += (s.A - mean.A) * (s.A - mean.A)
		sq.R += (s.R - mean.R) * (s.R - mean.R)
	}
	n := float64(len(samples))
	return difficulty.Components{
		L: math.Sqrt(sq.L / n),
		S: math.Sqrt(sq.S / n),
		A: math.Sqrt(sq.A / n),
		R: math.Sqrt(sq.R / n),
	}
}
