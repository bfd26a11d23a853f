// Package labor estimates the handling hours and wage cost of an intake.
package labor

import (
	"strings"

	"intake-app/apperror"

	"github.com/shopspring/decimal"
)

// Stage is one processing stage with its fixed share of the total hours.
type Stage struct {
	Name  string
	Share decimal.Decimal
}

var Stages = []Stage{
	{Name: "Unloading", Share: decimal.RequireFromString("0.20")},
	{Name: "Quality Control", Share: decimal.RequireFromString("0.35")},
	{Name: "Sorting & Grading", Share: decimal.RequireFromString("0.25")},
	{Name: "Packing & Labeling", Share: decimal.RequireFromString("0.20")},
}

// DefaultThroughput is kg handled per labor hour for products without a row.
const DefaultThroughput = 250.0

// Throughput is kg handled per labor hour, keyed by lower-case product.
var Throughput = map[string]float64{
	"avocado":       300,
	"mango":         280,
	"pineapple":     220,
	"passion fruit": 180,
	"french beans":  120,
	"snow peas":     100,
}

type StageCost struct {
	Stage   string  `json:"stage"`
	Hours   float64 `json:"hours"`
	CostKES float64 `json:"cost_kes"`
}

type Estimate struct {
	Product       string      `json:"product"`
	WeightKg      float64     `json:"weight_kg"`
	KgPerHour     float64     `json:"kg_per_hour"`
	HourlyWageKES float64     `json:"hourly_wage_kes"`
	TotalHours    float64     `json:"total_hours"`
	TotalCostKES  float64     `json:"total_cost_kes"`
	Stages        []StageCost `json:"stages"`
}

type Estimator struct {
	wage decimal.Decimal
}

func NewEstimator(hourlyWageKES float64) *Estimator {
	return &Estimator{wage: decimal.NewFromFloat(hourlyWageKES)}
}

// Estimate splits weight/throughput hours over the fixed stages. Figures are
// rounded to 2 dp per stage; totals are the sum of the rounded stages.
func (e *Estimator) Estimate(product string, weightKg float64) (Estimate, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return Estimate{}, apperror.Validation("product", "product is required")
	}
	if weightKg <= 0 {
		return Estimate{}, apperror.Validation("weight_kg", "weight must be positive")
	}

	rate, ok := Throughput[strings.ToLower(product)]
	if !ok {
		rate = DefaultThroughput
	}
	hours := decimal.NewFromFloat(weightKg).Div(decimal.NewFromFloat(rate))

	est := Estimate{
		Product:       product,
		WeightKg:      weightKg,
		KgPerHour:     rate,
		HourlyWageKES: e.wage.InexactFloat64(),
		Stages:        make([]StageCost, 0, len(Stages)),
	}
	totalHours, totalCost := decimal.Zero, decimal.Zero
	for _, st := range Stages {
		h := hours.Mul(st.Share).Round(2)
		c := h.Mul(e.wage).Round(2)
		totalHours = totalHours.Add(h)
		totalCost = totalCost.Add(c)
		est.Stages = append(est.Stages, StageCost{Stage: st.Name, Hours: h.InexactFloat64(), CostKES: c.InexactFloat64()})
	}
	est.TotalHours = totalHours.InexactFloat64()
	est.TotalCostKES = totalCost.InexactFloat64()
	return est, nil
}
