package grading

import (
	"math/rand"
	"testing"

	"intake-app/apperror"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitWeights = UnitWeights{"4kg": 4, "10kg": 10}

func key(variety, pack string, class, size int) CellKey {
	return CellKey{Variety: variety, PackSize: pack, Class: class, SizeCode: size}
}

func TestSummarize_HassFourKiloScenario(t *testing.T) {
	m := Matrix{
		key("Hass", "4kg", 1, 16): 10,
		key("Hass", "4kg", 2, 16): 5,
	}

	s, err := Summarize(m, unitWeights)
	require.NoError(t, err)

	want := Summary{
		Classes: []ClassTotal{
			{Variety: "Hass", PackSize: "4kg", Class: 1, Boxes: 10, WeightKg: 40},
			{Variety: "Hass", PackSize: "4kg", Class: 2, Boxes: 5, WeightKg: 20},
		},
		Packs:         []PackTotal{{Variety: "Hass", PackSize: "4kg", Boxes: 15, WeightKg: 60}},
		Varieties:     []VarietyTotal{{Variety: "Hass", Boxes: 15, WeightKg: 60}},
		TotalBoxes:    15,
		TotalWeightKg: 60,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 10, s.Class("Hass", "4kg", 1).Boxes)
	assert.Equal(t, 60.0, s.Pack("Hass", "4kg").WeightKg)
	assert.Zero(t, s.Pack("Fuerte", "10kg").Boxes)
}

func TestSummarize_EmptyAndAllZero(t *testing.T) {
	for name, m := range map[string]Matrix{
		"nil":      nil,
		"empty":    {},
		"all zero": {key("Hass", "4kg", 1, 12): 0, key("Fuerte", "99kg", 2, 30): 0},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := Summarize(m, unitWeights)
			require.NoError(t, err)
			assert.Zero(t, s.TotalBoxes)
			assert.Zero(t, s.TotalWeightKg)
			assert.Empty(t, s.Classes)
			assert.Empty(t, s.Varieties)
		})
	}
}

func TestSummarize_Rejections(t *testing.T) {
	_, err := Summarize(Matrix{key("Hass", "4kg", 1, 12): -1}, unitWeights)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = Summarize(Matrix{key("Hass", "6kg", 1, 12): 3}, unitWeights)
	assert.Equal(t, "packSize", apperror.FieldOf(err))
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	m := Matrix{key("Hass", "4kg", 1, 16): 10, key("Hass", "4kg", 1, 18): 0}
	before := Matrix{key("Hass", "4kg", 1, 16): 10, key("Hass", "4kg", 1, 18): 0}

	first, err := Summarize(m, unitWeights)
	require.NoError(t, err)
	second, err := Summarize(m, unitWeights)
	require.NoError(t, err)

	assert.Equal(t, before, m)
	assert.Equal(t, first, second)
}

func TestSummarize_GrandTotalEqualsCellSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	varieties := []string{"Fuerte", "Hass", "Jumbo"}
	packs := []string{"4kg", "10kg"}

	for iter := 0; iter < 50; iter++ {
		m := Matrix{}
		cellSum := 0
		weightSum := 0.0
		for _, v := range varieties {
			for _, p := range packs {
				for class := 1; class <= 2; class++ {
					for size := 12; size <= 32; size += 2 {
						if rng.Intn(3) == 0 {
							continue
						}
						n := rng.Intn(40)
						m[key(v, p, class, size)] = n
						cellSum += n
						weightSum += float64(n) * unitWeights[p]
					}
				}
			}
		}

		s, err := Summarize(m, unitWeights)
		require.NoError(t, err)

		assert.Equal(t, cellSum, s.TotalBoxes)
		assert.Equal(t, cellSum, sumBy(s.Varieties, func(v VarietyTotal) int { return v.Boxes }))
		assert.Equal(t, cellSum, sumBy(s.Packs, func(p PackTotal) int { return p.Boxes }))
		assert.Equal(t, cellSum, sumBy(s.Classes, func(c ClassTotal) int { return c.Boxes }))
		assert.InDelta(t, weightSum, s.TotalWeightKg, 1e-9)
	}
}

func TestMatrixFromCells(t *testing.T) {
	cells := []Cell{
		{CellKey: key("Hass", "4kg", 1, 16), Boxes: 10},
		{CellKey: key("Hass", "4kg", 2, 16), Boxes: 5},
	}
	m, err := MatrixFromCells(cells)
	require.NoError(t, err)
	assert.Equal(t, cells, m.Cells())

	_, err = MatrixFromCells(append(cells, Cell{CellKey: key("Hass", "4kg", 1, 16), Boxes: 1}))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
