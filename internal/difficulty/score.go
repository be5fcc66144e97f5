package difficulty

import "math"

// Components holds the four normalized difficulty axes.
// L is lexical complexity, S is structural complexity, A is semantic ambiguity
// between the correct answer and its distractors, R is normalized reasoning depth.
type Components struct {
	L float64 `json:"l" validate:"min=0"`
	S float64 `json:"s" validate:"min=0"`
	A float64 `json:"a" validate:"min=0"`
	R float64 `json:"r" validate:"min=0"`
}

// Weights holds the per-axis weights. Non-negative, conventionally summing to 1.
type Weights struct {
	WL float64 `json:"wl"`
	WS float64 `json:"ws"`
	WA float64 `json:"wa"`
	WR float64 `json:"wr"`
}

// DefaultWeights returns the process-wide default weighting. Callers may
// override per request; the result always records the weights actually used.
func DefaultWeights() Weights {
	return Weights{WL: 0.30, WS: 0.25, WA: 0.25, WR: 0.20}
}

// Result is an immutable difficulty score together with the inputs that
// produced it. Re-scoring produces a new Result.
type Result struct {
	Value      float64    `json:"value"`
	Components Components `json:"components"`
	Weights    Weights    `json:"weights"`
}

// Score combines the four components into a single difficulty value.
// Components are clamped to [0,1]; non-finite components or weights are
// rejected with InvalidComponentError. This function is the single source of
// truth for combining components.
func Score(c Components, w Weights) (Result, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"L", c.L}, {"S", c.S}, {"A", c.A}, {"R", c.R},
		{"wL", w.WL}, {"wS", w.WS}, {"wA", w.WA}, {"wR", w.WR},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return Result{}, &InvalidComponentError{Field: f.name, Value: f.value}
		}
	}

	clamped := Components{
		L: Clamp01(c.L),
		S: Clamp01(c.S),
		A: Clamp01(c.A),
		R: Clamp01(c.R),
	}

	value := w.WL*clamped.L + w.WS*clamped.S + w.WA*clamped.A + w.WR*clamped.R

	return Result{Value: value, Components: clamped, Weights: w}, nil
}

// NormalizeReasoningDepth maps a step count onto [0,1], saturating at 1 once
// steps reaches maxSteps.
func NormalizeReasoningDepth(steps, maxSteps int) (float64, error) {
	if steps < 0 {
		return 0, &InvalidInputError{Message: "steps must be non-negative"}
	}
	if maxSteps <= 0 {
		return 0, &InvalidInputError{Message: "maxSteps must be positive"}
	}
	return math.Min(float64(steps)/float64(maxSteps), 1.0), nil
}

// Clamp01 clamps v to the canonical [0,1] component domain.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Distance returns the absolute scalar distance between two difficulty values.
func Distance(a, b float64) float64 {
	return math.Abs(a - b)
}
