// Package grading turns per-size box counts of a graded pallet into box and
// weight totals per variety, pack size and class.
package grading

import (
	"cmp"
	"slices"

	"intake-app/apperror"

	"golang.org/x/exp/constraints"
)

type CellKey struct {
	Variety  string `json:"variety"`
	PackSize string `json:"pack_size"`
	Class    int    `json:"class"`
	SizeCode int    `json:"size_code"`
}

type Cell struct {
	CellKey
	Boxes int `json:"boxes"`
}

// Matrix maps a grading cell to its box count. Absent keys count as zero.
type Matrix map[CellKey]int

// UnitWeights maps a pack size label to kilograms per box.
type UnitWeights map[string]float64

type ClassTotal struct {
	Variety  string  `json:"variety"`
	PackSize string  `json:"pack_size"`
	Class    int     `json:"class"`
	Boxes    int     `json:"boxes"`
	WeightKg float64 `json:"weight_kg"`
}

type PackTotal struct {
	Variety  string  `json:"variety"`
	PackSize string  `json:"pack_size"`
	Boxes    int     `json:"boxes"`
	WeightKg float64 `json:"weight_kg"`
}

type VarietyTotal struct {
	Variety  string  `json:"variety"`
	Boxes    int     `json:"boxes"`
	WeightKg float64 `json:"weight_kg"`
}

type Summary struct {
	Classes       []ClassTotal   `json:"classes"`
	Packs         []PackTotal    `json:"packs"`
	Varieties     []VarietyTotal `json:"varieties"`
	TotalBoxes    int            `json:"total_boxes"`
	TotalWeightKg float64        `json:"total_weight_kg"`
}

type number interface {
	constraints.Integer | constraints.Float
}

func sumBy[E any, T number](items []E, f func(E) T) T {
	var total T
	for _, it := range items {
		total += f(it)
	}
	return total
}

// MatrixFromCells builds a Matrix, rejecting a key that appears twice.
func MatrixFromCells(cells []Cell) (Matrix, error) {
	m := make(Matrix, len(cells))
	for i, c := range cells {
		if _, dup := m[c.CellKey]; dup {
			return nil, apperror.Validationf("cells", "cell %d duplicates %s/%s/class %d/size %d",
				i, c.Variety, c.PackSize, c.Class, c.SizeCode)
		}
		m[c.CellKey] = c.Boxes
	}
	return m, nil
}

// Cells returns the non-zero cells of m in a stable order.
func (m Matrix) Cells() []Cell {
	cells := make([]Cell, 0, len(m))
	for k, v := range m {
		if v == 0 {
			continue
		}
		cells = append(cells, Cell{CellKey: k, Boxes: v})
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		return compareKeys(a.CellKey, b.CellKey)
	})
	return cells
}

// Summarize aggregates m. It never mutates m and holds no state, so the same
// input always yields the same output.
func Summarize(m Matrix, unitWeights UnitWeights) (Summary, error) {
	type vpc struct {
		variety, pack string
		class         int
	}
	type vp struct{ variety, pack string }

	classBoxes := make(map[vpc]int)
	packBoxes := make(map[vp]int)

	for k, boxes := range m {
		if boxes < 0 {
			return Summary{}, apperror.Validationf("boxes", "negative count %d for %s/%s/class %d/size %d",
				boxes, k.Variety, k.PackSize, k.Class, k.SizeCode)
		}
		if boxes == 0 {
			continue
		}
		if k.Variety == "" {
			return Summary{}, apperror.Validation("variety", "variety is required")
		}
		if _, ok := unitWeights[k.PackSize]; !ok {
			return Summary{}, apperror.Validationf("packSize", "no unit weight configured for pack size %q", k.PackSize)
		}
		classBoxes[vpc{k.Variety, k.PackSize, k.Class}] += boxes
		packBoxes[vp{k.Variety, k.PackSize}] += boxes
	}

	s := Summary{
		Classes:   make([]ClassTotal, 0, len(classBoxes)),
		Packs:     make([]PackTotal, 0, len(packBoxes)),
		Varieties: []VarietyTotal{},
	}
	for k, boxes := range classBoxes {
		s.Classes = append(s.Classes, ClassTotal{
			Variety:  k.variety,
			PackSize: k.pack,
			Class:    k.class,
			Boxes:    boxes,
			WeightKg: float64(boxes) * unitWeights[k.pack],
		})
	}
	slices.SortFunc(s.Classes, func(a, b ClassTotal) int {
		return cmp.Or(cmp.Compare(a.Variety, b.Variety), cmp.Compare(a.PackSize, b.PackSize), cmp.Compare(a.Class, b.Class))
	})

	varietyIdx := make(map[string]int)
	for k, boxes := range packBoxes {
		s.Packs = append(s.Packs, PackTotal{
			Variety:  k.variety,
			PackSize: k.pack,
			Boxes:    boxes,
			WeightKg: float64(boxes) * unitWeights[k.pack],
		})
	}
	slices.SortFunc(s.Packs, func(a, b PackTotal) int {
		return cmp.Or(cmp.Compare(a.Variety, b.Variety), cmp.Compare(a.PackSize, b.PackSize))
	})

	for _, p := range s.Packs {
		i, ok := varietyIdx[p.Variety]
		if !ok {
			i = len(s.Varieties)
			varietyIdx[p.Variety] = i
			s.Varieties = append(s.Varieties, VarietyTotal{Variety: p.Variety})
		}
		s.Varieties[i].Boxes += p.Boxes
		s.Varieties[i].WeightKg += p.WeightKg
	}

	s.TotalBoxes = sumBy(s.Varieties, func(v VarietyTotal) int { return v.Boxes })
	s.TotalWeightKg = sumBy(s.Varieties, func(v VarietyTotal) float64 { return v.WeightKg })
	return s, nil
}

// Class returns the subtotal for one (variety, pack size, class), zero if absent.
func (s Summary) Class(variety, pack string, class int) ClassTotal {
	for _, c := range s.Classes {
		if c.Variety == variety && c.PackSize == pack && c.Class == class {
			return c
		}
	}
	return ClassTotal{Variety: variety, PackSize: pack, Class: class}
}

// Pack returns the total for one (variety, pack size), zero if absent.
func (s Summary) Pack(variety, pack string) PackTotal {
	for _, p := range s.Packs {
		if p.Variety == variety && p.PackSize == pack {
			return p
		}
	}
	return PackTotal{Variety: variety, PackSize: pack}
}

func compareKeys(a, b CellKey) int {
	return cmp.Or(
		cmp.Compare(a.Variety, b.Variety),
		cmp.Compare(a.PackSize, b.PackSize),
		cmp.Compare(a.Class, b.Class),
		cmp.Compare(a.SizeCode, b.SizeCode),
	)
}
