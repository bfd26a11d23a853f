// Package weighbridge records gate-scale weight entries and reconciles
// declared against measured weight over a time window.
package weighbridge

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Today is the calendar day of now in now's location.
func Today(now time.Time) Window {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

func LastHour(now time.Time) Window {
	return Window{From: now.Add(-time.Hour), To: now}
}

type Reconciliation struct {
	Window          *Window `json:"window,omitempty"`
	Count           int     `json:"count"`
	TotalNetKg      float64 `json:"total_net_kg"`
	TotalDeclaredKg float64 `json:"total_declared_kg"`
	DiscrepancyKg   float64 `json:"discrepancy_kg"`
	// DiscrepancyRate is |declared - net| / declared * 100, 2 dp.
	DiscrepancyRate float64 `json:"discrepancy_rate"`
}

// Reconcile summarizes the non-superseded entries whose effective time falls
// in w. Count and sums always come from the same filtered set.
func Reconcile(entries []WeightEntry, w Window) Reconciliation {
	inWindow := make([]WeightEntry, 0, len(entries))
	for _, e := range entries {
		if w.Contains(e.EffectiveTime()) {
			inWindow = append(inWindow, e)
		}
	}
	r := Summarize(inWindow)
	r.Window = &w
	return r
}

// Summarize reconciles entries without any window filter. The declared
// fallback to net is applied per entry before summing.
func Summarize(entries []WeightEntry) Reconciliation {
	declared := decimal.Zero
	actual := decimal.Zero
	count := 0
	for _, e := range entries {
		if e.Superseded {
			continue
		}
		count++
		declared = declared.Add(decimal.NewFromFloat(e.DeclaredOrNet()))
		actual = actual.Add(decimal.NewFromFloat(e.NetWeightKg))
	}

	diff := declared.Sub(actual).Abs()
	rate := decimal.Zero
	if !declared.IsZero() {
		rate = diff.Div(declared).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Reconciliation{
		Count:           count,
		TotalNetKg:      actual.InexactFloat64(),
		TotalDeclaredKg: declared.InexactFloat64(),
		DiscrepancyKg:   diff.InexactFloat64(),
		DiscrepancyRate: rate.InexactFloat64(),
	}
}
