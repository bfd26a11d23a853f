// Package grn builds the goods-received note of a shipment by spreading each
// measured weight and crate count over the varieties declared with it.
package grn

import (
	"fmt"
	"math"
	"slices"
	"time"

	"intake-app/apperror"
	"intake-app/wms/weighbridge"
)

const MixedVariety = "Mixed"

// WeightTolerance is the allowed drift between the apportioned and measured weight.
const WeightTolerance = 1e-6

// Source is one measured weight with the varieties declared for it.
type Source struct {
	Varieties []string
	WeightKg  float64
	Crates    int
	At        time.Time
}

type Line struct {
	Variety  string    `json:"variety"`
	WeightKg float64   `json:"weight_kg"`
	Crates   int       `json:"crates"`
	SourceAt time.Time `json:"source_at"`
}

func SourcesFromEntries(entries []weighbridge.WeightEntry) []Source {
	sources := make([]Source, 0, len(entries))
	for _, e := range entries {
		if e.Superseded {
			continue
		}
		sources = append(sources, Source{
			Varieties: e.VarietyList(),
			WeightKg:  e.NetWeightKg,
			Crates:    e.Crates,
			At:        e.EffectiveTime(),
		})
	}
	return sources
}

// Apportion splits every source evenly across its varieties and accumulates
// the shares by variety. Weight is split exactly. Fractional crate shares are
// summed per variety and each variety total is rounded half up once, so the
// crate total drifts by at most varieties-1 however many sources there are.
// A source without varieties goes to a single "Mixed" line.
func Apportion(sources []Source) []Line {
	var lines []Line
	var crates []float64
	index := make(map[string]int)

	add := func(variety string, weight, share float64, at time.Time) {
		i, ok := index[variety]
		if !ok {
			i = len(lines)
			index[variety] = i
			lines = append(lines, Line{Variety: variety})
			crates = append(crates, 0)
		}
		lines[i].WeightKg += weight
		crates[i] += share
		if at.After(lines[i].SourceAt) {
			lines[i].SourceAt = at
		}
	}

	for _, src := range sources {
		if len(src.Varieties) == 0 {
			add(MixedVariety, src.WeightKg, float64(src.Crates), src.At)
			continue
		}
		n := float64(len(src.Varieties))
		for _, v := range src.Varieties {
			add(v, src.WeightKg/n, float64(src.Crates)/n, src.At)
		}
	}
	for i := range lines {
		lines[i].Crates = roundHalfUp(crates[i])
	}
	return lines
}

// shares that should land exactly on .5 can come out a hair below it
const roundingSlack = 1e-9

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5 + roundingSlack))
}

// CrateDriftBound is the largest crate rounding error Apportion can produce
// for sources: one less than the number of distinct varieties they name.
func CrateDriftBound(sources []Source) int {
	seen := make(map[string]struct{})
	for _, s := range sources {
		if len(s.Varieties) == 0 {
			seen[MixedVariety] = struct{}{}
		}
		for _, v := range s.Varieties {
			seen[v] = struct{}{}
		}
	}
	return max(len(seen)-1, 0)
}

// CheckBalance verifies that lines account for every kilogram of sources and
// that crate rounding stayed within its bound.
func CheckBalance(lines []Line, sources []Source) error {
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

	if math.Abs(wantKg-gotKg) > WeightTolerance {
		return apperror.Inconsistency("weight_kg",
			fmt.Sprintf("apportioned %.6f kg but measured %.6f kg", gotKg, wantKg))
	}
	if drift := gotCrates - wantCrates; drift > CrateDriftBound(sources) || -drift > CrateDriftBound(sources) {
		return apperror.Inconsistency("crates",
			fmt.Sprintf("apportioned %d crates but counted %d", gotCrates, wantCrates))
	}
	return nil
}

// CheckDeclared reports a variety on a weight entry that the shipment never declared.
// An empty declared list accepts anything.
func CheckDeclared(declared []string, sources []Source) error {
	if len(declared) == 0 {
		return nil
	}
	for i, s := range sources {
		for _, v := range s.Varieties {
			if !slices.Contains(declared, v) {
				return apperror.Inconsistency(fmt.Sprintf("entries[%d].varieties", i),
					fmt.Sprintf("variety %q was not declared for the shipment", v))
			}
		}
	}
	return nil
}
