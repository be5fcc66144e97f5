package difficulty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_WeightedCombination(t *testing.T) {
	c := Components{L: 0.4, S: 0.6, A: 0.2, R: 0.8}
	w := Weights{WL: 0.25, WS: 0.25, WA: 0.25, WR: 0.25}

	result, err := Score(c, w)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, result.Value, 1e-9)
	assert.Equal(t, c, result.Components)
	assert.Equal(t, w, result.Weights)
}

func TestScore_ClampsOutOfDomainComponents(t *testing.T) {
	c := Components{L: -0.5, S: 1.7, A: 0.5, R: 0.5}
	w := DefaultWeights()

	result, err := Score(c, w)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Components.L)
	assert.Equal(t, 1.0, result.Components.S)
}

func TestScore_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		c    Components
	}{
		{"nan component", Components{L: math.NaN()}},
		{"positive inf", Components{S: math.Inf(1)}},
		{"negative inf", Components{R: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.c, DefaultWeights())
			require.Error(t, err)
			var ice *InvalidComponentError
			assert.ErrorAs(t, err, &ice)
		})
	}
}

func TestScore_RejectsNonFiniteWeights(t *testing.T) {
	_, err := Score(Components{L: 0.5}, Weights{WL: math.NaN()})
	var ice *InvalidComponentError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "wL", ice.Field)
}

func TestScore_BoundedForValidInputs(t *testing.T) {
	// Property: components in [0,1] with weights summing to 1 give D in [0,1].
	values := []float64{0, 0.25, 0.5, 0.75, 1}
	w := Weights{WL: 0.1, WS: 0.4, WA: 0.3, WR: 0.2}
	for _, l := range values {
		for _, s := range values {
			result, err := Score(Components{L: l, S: s, A: 1 - l, R: 1 - s}, w)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Value, 0.0)
			assert.LessOrEqual(t, result.Value, 1.0)
		}
	}
}

func TestNormalizeReasoningDepth(t *testing.T) {
	tests := []struct {
		name     string
		steps    int
		maxSteps int
		want     float64
		wantErr  bool
	}{
		{"zero steps", 0, 4, 0.0, false},
		{"half", 2, 4, 0.5, false},
		{"saturates at max", 4, 4, 1.0, false},
		{"saturates beyond max", 9, 4, 1.0, false},
		{"negative steps", -1, 4, 0, true},
		{"zero max", 1, 0, 0, true},
		{"negative max", 1, -3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeReasoningDepth(tt.steps, tt.maxSteps)
			if tt.wantErr {
				var iie *InvalidInputError
				assert.ErrorAs(t, err, &iie)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizeReasoningDepth_Monotonic(t *testing.T) {
	prev := -1.0
	for steps := 0; steps <= 10; steps++ {
		got, err := NormalizeReasoningDepth(steps, 6)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestEstimateComponents_Deterministic(t *testing.T) {
	text := "The committee deliberated extensively because the evidence was inconclusive."
	a := EstimateComponents(text, DefaultEstimateOptions())
	b := EstimateComponents(text, DefaultEstimateOptions())
	assert.Equal(t, a, b)
}

func TestEstimateComponents_EmptyText(t *testing.T) {
	assert.Equal(t, Components{}, EstimateComponents("   ", DefaultEstimateOptions()))
}

func TestEstimateComponents_HarderTextScoresHigherL(t *testing.T) {
	easy := EstimateComponents("The cat sat on the mat.", DefaultEstimateOptions())
	hard := EstimateComponents(
		"Epistemological considerations notwithstanding, quantitative reasoning predominates.",
		DefaultEstimateOptions())
	assert.Greater(t, hard.L, easy.L)
}

func TestIsCJKText(t *testing.T) {
	assert.True(t, IsCJKText("彼は学校に行きました。"))
	assert.False(t, IsCJKText("He went to school."))
}
