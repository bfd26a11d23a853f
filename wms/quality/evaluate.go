// Package quality turns a produce assessment and the inspector's weights into
// a stored quality-check result for a shipment pallet.
package quality

import (
	"fmt"
	"slices"

	"intake-app/apperror"
	"intake-app/types"

	"github.com/shopspring/decimal"
)

type DimensionStatus string

const (
	Pass        DimensionStatus = "pass"
	Conditional DimensionStatus = "conditional"
	Fail        DimensionStatus = "fail"
)

type Overall string

const (
	Approved            Overall = "approved"
	ConditionalApproval Overall = "conditional"
	Rejected            Overall = "rejected"
)

// Passed reports whether the pipeline may continue with this result.
func (o Overall) Passed() bool {
	return o == Approved || o == ConditionalApproval
}

const (
	conditionalBelow = 60
	failBelow        = 40
)

// Assessment is what the diagnosis service says about the produce.
type Assessment struct {
	Product    string  `json:"product"`
	Confidence float64 `json:"confidence"`
	Ripeness   string  `json:"ripeness"`
	Freshness  string  `json:"freshness"`
	Damage     string  `json:"damage"`
	Score      float64 `json:"score"`
	Edible     bool    `json:"edible"`
}

// CheckInput carries the inspector's side of a quality check.
type CheckInput struct {
	ShipmentID       types.SnowflakeID `json:"-"`
	PalletID         string            `json:"pallet_id" validate:"required"`
	Product          string            `json:"product"`
	ImageRef         string            `json:"image_ref"`
	DeclaredWeightKg *float64          `json:"declared_weight_kg" validate:"omitempty,gte=0"`
	NetWeightKg      float64           `json:"net_weight_kg" validate:"gte=0"`
	RejectedWeightKg float64           `json:"rejected_weight_kg" validate:"gte=0"`
	AcceptedWeightKg *float64          `json:"accepted_weight_kg" validate:"omitempty,gte=0"`
	Packaging        DimensionStatus   `json:"packaging" validate:"omitempty,oneof=pass conditional fail"`
	Seals            DimensionStatus   `json:"seals" validate:"omitempty,oneof=pass conditional fail"`
	Manual           *Assessment       `json:"manual_assessment"`
	Notes            string            `json:"notes"`
	Operator         string            `json:"-"`
}

type Result struct {
	AcceptedWeightKg float64
	RejectedWeightKg float64
	Packaging        DimensionStatus
	Freshness        DimensionStatus
	Seals            DimensionStatus
	Overall          Overall
}

// FreshnessStatus grades the assessment score.
func FreshnessStatus(a Assessment) DimensionStatus {
	switch {
	case !a.Edible || a.Score < failBelow:
		return Fail
	case a.Score < conditionalBelow:
		return Conditional
	default:
		return Pass
	}
}

// Evaluate combines the inspector's weights and dimension statuses with the
// assessment. Accepted weight defaults to net minus rejected; accepted plus
// rejected above net is reported, never clamped. A score outside 0-100 means
// the diagnosis service misbehaved and is reported as unavailable.
func Evaluate(in CheckInput, a Assessment) (Result, error) {
	if a.Score < 0 || a.Score > 100 {
		return Result{}, apperror.Unavailable(fmt.Sprintf("assessment score %.1f is outside 0-100", a.Score), nil)
	}

	net := decimal.NewFromFloat(in.NetWeightKg)
	rejected := decimal.NewFromFloat(in.RejectedWeightKg)
	accepted := net.Sub(rejected)
	if in.AcceptedWeightKg != nil {
		accepted = decimal.NewFromFloat(*in.AcceptedWeightKg)
	}
	if accepted.IsNegative() || accepted.Add(rejected).GreaterThan(net) {
		return Result{}, apperror.Inconsistency("rejected_weight_kg",
			fmt.Sprintf("accepted %s kg + rejected %s kg exceeds net %s kg",
				accepted.StringFixed(2), rejected.StringFixed(2), net.StringFixed(2)))
	}

	r := Result{
		AcceptedWeightKg: accepted.InexactFloat64(),
		RejectedWeightKg: rejected.InexactFloat64(),
		Packaging:        orPass(in.Packaging),
		Seals:            orPass(in.Seals),
		Freshness:        FreshnessStatus(a),
	}

	dims := []DimensionStatus{r.Packaging, r.Freshness, r.Seals}
	switch {
	case !a.Edible || slices.Contains(dims, Fail):
		r.Overall = Rejected
	case slices.Contains(dims, Conditional) || a.Score < conditionalBelow:
		r.Overall = ConditionalApproval
	default:
		r.Overall = Approved
	}
	return r, nil
}

func orPass(s DimensionStatus) DimensionStatus {
	if s == "" {
		return Pass
	}
	return s
}
