package grn

import (
	"context"
	"io"
	"math"
	"math/rand"
	"testing"
	"time"

	"intake-app/apperror"
	"intake-app/database/dbtest"
	"intake-app/wms/activity"
	"intake-app/wms/weighbridge"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func TestApportion_NoVarietiesGoesToMixed(t *testing.T) {
	lines := Apportion([]Source{{WeightKg: 812.5, Crates: 31, At: t0}})

	want := []Line{{Variety: MixedVariety, WeightKg: 812.5, Crates: 31, SourceAt: t0}}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Apportion() mismatch (-want +got):\n%s", diff)
	}
}

func TestApportion_SingleVarietyTakesEverything(t *testing.T) {
	lines := Apportion([]Source{{Varieties: []string{"Hass"}, WeightKg: 950, Crates: 42, At: t0}})

	require.Len(t, lines, 1)
	assert.Equal(t, "Hass", lines[0].Variety)
	assert.Equal(t, 950.0, lines[0].WeightKg)
	assert.Equal(t, 42, lines[0].Crates)
}

func TestApportion_AccumulatesByVariety(t *testing.T) {
	sources := []Source{
		{Varieties: []string{"Hass", "Fuerte"}, WeightKg: 1000, Crates: 5, At: t0},
		{Varieties: []string{"Fuerte"}, WeightKg: 300, Crates: 10, At: t1},
		{Varieties: []string{"Hass", "Fuerte", "Pinkerton"}, WeightKg: 90, Crates: 7, At: t0},
	}

	lines := Apportion(sources)

	want := []Line{
		// Hass 5/2+7/3 rounds to 5, Fuerte 5/2+10+7/3 to 15, Pinkerton 7/3 to 2
		{Variety: "Hass", WeightKg: 530, Crates: 5, SourceAt: t0},
		{Variety: "Fuerte", WeightKg: 830, Crates: 15, SourceAt: t1},
		{Variety: "Pinkerton", WeightKg: 30, Crates: 2, SourceAt: t0},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Apportion() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, CheckBalance(lines, sources))
}

func TestApportion_BalanceHoldsForAnyVarietyCount(t *testing.T) {
	pool := []string{"Hass", "Fuerte", "Pinkerton", "Reed", "Bacon", "Ettinger", "Gwen"}
	rng := rand.New(rand.NewSource(11))

	for n := 0; n <= len(pool); n++ {
		for round := 0; round < 25; round++ {
			var sources []Source
			for i := 0; i < 1+rng.Intn(12); i++ {
				sources = append(sources, Source{
					Varieties: pool[:n],
					WeightKg:  rng.Float64() * 5000,
					Crates:    rng.Intn(400),
					At:        t0,
				})
			}
			lines := Apportion(sources)

			var wantKg, gotKg float64
			var wantCrates, gotCrates int
			for _, s := range sources {
				wantKg += s.WeightKg
				wantCrates += s.Crates
			}
			for _, l := range lines {
				gotKg += l.WeightKg
				gotCrates += l.Crates
			}
			assert.InDelta(t, wantKg, gotKg, WeightTolerance)
			assert.LessOrEqual(t, int(math.Abs(float64(gotCrates-wantCrates))), max(n-1, 0))
			assert.NoError(t, CheckBalance(lines, sources))
		}
	}
}

func TestApportion_CrateDriftDoesNotGrowWithEntries(t *testing.T) {
	var sources []Source
	for i := 0; i < 3; i++ {
		sources = append(sources, Source{Varieties: []string{"Hass", "Fuerte"}, WeightKg: 100, Crates: 1, At: t0})
	}

	lines := Apportion(sources)

	require.Len(t, lines, 2)
	// each variety holds 1.5 crates in total
	assert.Equal(t, 2, lines[0].Crates)
	assert.Equal(t, 2, lines[1].Crates)
	assert.Equal(t, 1, CrateDriftBound(sources))
	assert.NoError(t, CheckBalance(lines, sources))

	err := CheckBalance([]Line{
		{Variety: "Hass", WeightKg: 150, Crates: 3},
		{Variety: "Fuerte", WeightKg: 150, Crates: 3},
	}, sources)
	assert.True(t, apperror.Is(err, apperror.KindInconsistency))
	assert.Equal(t, "crates", apperror.FieldOf(err))
}

func TestCrateDriftBound_CountsDistinctVarieties(t *testing.T) {
	assert.Equal(t, 0, CrateDriftBound(nil))
	assert.Equal(t, 0, CrateDriftBound([]Source{{Crates: 3}, {Crates: 4}}))
	assert.Equal(t, 2, CrateDriftBound([]Source{
		{Varieties: []string{"Hass", "Fuerte"}},
		{Varieties: []string{"Hass", "Reed"}},
		{Varieties: []string{"Fuerte"}},
	}))
}

func TestCheckBalance_FlagsDrift(t *testing.T) {
	sources := []Source{{Varieties: []string{"Hass", "Fuerte"}, WeightKg: 100, Crates: 4}}

	err := CheckBalance([]Line{{Variety: "Hass", WeightKg: 50, Crates: 2}}, sources)
	assert.True(t, apperror.Is(err, apperror.KindInconsistency))
	assert.Equal(t, "weight_kg", apperror.FieldOf(err))

	err = CheckBalance([]Line{
		{Variety: "Hass", WeightKg: 50, Crates: 4},
		{Variety: "Fuerte", WeightKg: 50, Crates: 2},
	}, sources)
	assert.Equal(t, "crates", apperror.FieldOf(err))
}

func TestCheckDeclared(t *testing.T) {
	sources := []Source{{Varieties: []string{"Hass"}}, {Varieties: []string{"Reed"}}}

	assert.NoError(t, CheckDeclared(nil, sources))
	assert.NoError(t, CheckDeclared([]string{"Hass", "Reed"}, sources))

	err := CheckDeclared([]string{"Hass"}, sources)
	assert.True(t, apperror.Is(err, apperror.KindInconsistency))
	assert.Equal(t, "entries[1].varieties", apperror.FieldOf(err))
}

func TestService_GenerateReplacesLines(t *testing.T) {
	db := dbtest.Open(t, &GRNLine{})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sink := activity.NewMemorySink()
	svc := NewService(NewGRNRepository(db), sink, logger)
	ctx := context.Background()

	entries := []weighbridge.WeightEntry{
		{NetWeightKg: 600, Crates: 20, Varieties: "Hass,Fuerte", CreatedAt: t0},
		{NetWeightKg: 999, Crates: 99, Varieties: "Hass", CreatedAt: t0, Superseded: true},
	}
	lines, err := svc.Generate(ctx, 7, []string{"Hass", "Fuerte"}, entries, "clerk")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	entries[0].NetWeightKg = 640
	_, err = svc.Generate(ctx, 7, nil, entries[:1], "clerk")
	require.NoError(t, err)

	stored, err := svc.ListByShipment(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// ordered by variety
	assert.Equal(t, "Fuerte", stored[0].Variety)
	assert.Equal(t, 320.0, stored[0].WeightKg)
	assert.Equal(t, 10, stored[0].Crates)

	_, err = svc.Generate(ctx, 7, []string{"Fuerte"}, entries[:1], "clerk")
	assert.True(t, apperror.Is(err, apperror.KindInconsistency))

	assert.Equal(t, []string{"grn.generate", "grn.generate"}, sink.Actions())
}
