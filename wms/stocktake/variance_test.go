package stocktake

import (
	"math/rand"
	"testing"

	"intake-app/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_AverageOverVarianceLinesOnly(t *testing.T) {
	lines := []LineInput{
		{ItemID: "HASS-4KG-C1", Expected: 120, Counted: 120},
		{ItemID: "HASS-4KG-C2", Expected: 40, Counted: 43},
		{ItemID: "FUERTE-4KG-C1", Expected: 80, Counted: 80},
		{ItemID: "FUERTE-10KG-C1", Expected: 12, Counted: 11},
		{ItemID: "HASS-10KG-C1", Expected: 9, Counted: 9},
	}

	s, err := Summarize(lines)
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalItems: 5, ExactMatches: 3, Variances: 2, AverageVariance: 2.00}, s)
}

func TestSummarize_AllMatchesReportsZeroAverage(t *testing.T) {
	s, err := Summarize([]LineInput{{ItemID: "A", Expected: 3, Counted: 3}})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Variances)
	assert.Zero(t, s.AverageVariance)
}

func TestSummarize_CountsAlwaysAddUp(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for n := 1; n < 40; n++ {
		lines := make([]LineInput, n)
		for i := range lines {
			expected := float64(rng.Intn(50))
			counted := expected
			if rng.Intn(3) == 0 {
				counted = float64(rng.Intn(50))
			}
			lines[i] = LineInput{ItemID: string(rune('A'+i%26)) + string(rune('a'+i/26)), Expected: expected, Counted: counted}
		}
		s, err := Summarize(lines)
		require.NoError(t, err)
		assert.Equal(t, s.TotalItems, s.ExactMatches+s.Variances)
		if s.Variances == 0 {
			assert.Zero(t, s.AverageVariance)
		}
	}
}

func TestSummarize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineInput
		field string
	}{
		{"empty", nil, "lines"},
		{"blank item", []LineInput{{ItemID: "A"}, {ItemID: "  "}}, "lines[1].item_id"},
		{"duplicate item", []LineInput{{ItemID: "A"}, {ItemID: "B"}, {ItemID: "A"}}, "lines[2].item_id"},
		{"negative expected", []LineInput{{ItemID: "A", Expected: -1}}, "lines[0].expected"},
		{"negative counted", []LineInput{{ItemID: "A", Counted: -2}}, "lines[0].counted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(tt.lines)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}
}

func TestLineInput_Variance(t *testing.T) {
	assert.Equal(t, 3.0, LineInput{Expected: 40, Counted: 43}.Variance())
	assert.Equal(t, -0.3, LineInput{Expected: 0.5, Counted: 0.2}.Variance())
	assert.True(t, LineInput{Expected: 7, Counted: 7}.Match())
}
