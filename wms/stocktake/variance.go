// Package stocktake reconciles physical cold-room counts against expected
// on-hand quantities and keeps a bounded history of submitted batches.
package stocktake

import (
	"fmt"
	"strings"

	"intake-app/apperror"

	"github.com/shopspring/decimal"
)

type LineInput struct {
	ItemID   string  `json:"item_id"`
	Expected float64 `json:"expected"`
	Counted  float64 `json:"counted"`
}

type Summary struct {
	TotalItems      int     `json:"total_items"`
	ExactMatches    int     `json:"exact_matches"`
	Variances       int     `json:"variances"`
	AverageVariance float64 `json:"average_variance"`
}

// Variance is counted minus expected.
func (l LineInput) Variance() float64 {
	return decimal.NewFromFloat(l.Counted).Sub(decimal.NewFromFloat(l.Expected)).InexactFloat64()
}

func (l LineInput) Match() bool {
	return l.Variance() == 0
}

// Validate rejects an empty batch, blank or repeated item ids and negative quantities.
func Validate(lines []LineInput) error {
	if len(lines) == 0 {
		return apperror.Validation("lines", "stock take needs at least one line")
	}
	seen := make(map[string]int, len(lines))
	for i, l := range lines {
		id := strings.TrimSpace(l.ItemID)
		if id == "" {
			return apperror.Validation(fmt.Sprintf("lines[%d].item_id", i), "item id is required")
		}
		if prev, ok := seen[id]; ok {
			return apperror.Validation(fmt.Sprintf("lines[%d].item_id", i),
				fmt.Sprintf("item %q already counted on line %d", id, prev))
		}
		seen[id] = i
		if l.Expected < 0 {
			return apperror.Validation(fmt.Sprintf("lines[%d].expected", i), "expected quantity cannot be negative")
		}
		if l.Counted < 0 {
			return apperror.Validation(fmt.Sprintf("lines[%d].counted", i), "counted quantity cannot be negative")
		}
	}
	return nil
}

// Summarize validates lines and reports match and variance counts. The
// average variance is the mean absolute variance over variance lines only,
// rounded to 2 dp, and 0 when every line matches.
func Summarize(lines []LineInput) (Summary, error) {
	if err := Validate(lines); err != nil {
		return Summary{}, err
	}

	s := Summary{TotalItems: len(lines)}
	total := decimal.Zero
	for _, l := range lines {
		v := decimal.NewFromFloat(l.Counted).Sub(decimal.NewFromFloat(l.Expected))
		if v.IsZero() {
			s.ExactMatches++
			continue
		}
		s.Variances++
		total = total.Add(v.Abs())
	}
	if s.Variances > 0 {
		s.AverageVariance = total.Div(decimal.NewFromInt(int64(s.Variances))).Round(2).InexactFloat64()
	}
	return s, nil
}
