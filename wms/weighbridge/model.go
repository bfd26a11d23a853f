package weighbridge

import (
	"strings"
	"time"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

// WeightEntry is one gate-scale measurement. Rows are never updated except
// for Annotation and the Superseded flag, and never deleted.
type WeightEntry struct {
	ID               types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	ShipmentID       types.SnowflakeID  `json:"shipment_id" gorm:"index"`
	SupplierCode     string             `json:"supplier_code" gorm:"size:50;index"`
	VehicleNo        string             `json:"vehicle_no" gorm:"size:30"`
	DeclaredWeightKg *float64           `json:"declared_weight_kg" gorm:"default:null"`
	GrossWeightKg    float64            `json:"gross_weight_kg"`
	TareWeightKg     float64            `json:"tare_weight_kg"`
	NetWeightKg      float64            `json:"net_weight_kg"`
	Crates           int                `json:"crates"`
	Varieties        string             `json:"-" gorm:"size:255"`
	CapturedAt       *time.Time         `json:"captured_at" gorm:"index;default:null"`
	SupersedesID     *types.SnowflakeID `json:"supersedes_id" gorm:"default:null"`
	Superseded       bool               `json:"superseded" gorm:"default:false;index"`
	Annotation       string             `json:"annotation"`
	CreatedBy        string             `json:"created_by" gorm:"size:100"`
	CreatedAt        time.Time          `json:"created_at" gorm:"index"`
}

func (e *WeightEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == 0 {
		e.ID = types.NewSnowflakeID()
	}
	return
}

// VarietyList returns the declared varieties in declaration order.
func (e WeightEntry) VarietyList() []string {
	if e.Varieties == "" {
		return nil
	}
	return strings.Split(e.Varieties, ",")
}

// DeclaredOrNet is the declared weight, or the net weight when nothing was declared.
func (e WeightEntry) DeclaredOrNet() float64 {
	if e.DeclaredWeightKg != nil {
		return *e.DeclaredWeightKg
	}
	return e.NetWeightKg
}

// EffectiveTime is the capture time, falling back to the creation time.
func (e WeightEntry) EffectiveTime() time.Time {
	if e.CapturedAt != nil && !e.CapturedAt.IsZero() {
		return *e.CapturedAt
	}
	return e.CreatedAt
}

type EntryInput struct {
	ShipmentID       types.SnowflakeID `json:"shipment_id"`
	SupplierCode     string            `json:"supplier_code" validate:"required"`
	VehicleNo        string            `json:"vehicle_no"`
	DeclaredWeightKg *float64          `json:"declared_weight_kg"`
	GrossWeightKg    float64           `json:"gross_weight_kg" validate:"gte=0"`
	TareWeightKg     float64           `json:"tare_weight_kg" validate:"gte=0"`
	NetWeightKg      *float64          `json:"net_weight_kg"`
	Crates           int               `json:"crates" validate:"gte=0"`
	Varieties        []string          `json:"varieties"`
	CapturedAt       *time.Time        `json:"captured_at"`
	Operator         string            `json:"-"`
}

// NewWeightEntry validates in and derives the net weight (gross - tare) when
// it was not measured directly.
func NewWeightEntry(in EntryInput) (*WeightEntry, error) {
	if err := apperror.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.DeclaredWeightKg != nil && *in.DeclaredWeightKg < 0 {
		return nil, apperror.Validation("declared_weight_kg", "must not be negative")
	}

	net := in.GrossWeightKg - in.TareWeightKg
	if in.NetWeightKg != nil {
		net = *in.NetWeightKg
	}
	if net < 0 {
		return nil, apperror.Validation("net_weight_kg", "net weight must not be negative")
	}

	varieties, err := normalizeVarieties(in.Varieties)
	if err != nil {
		return nil, err
	}

	// a zero capture time is stored as missing so the COALESCE in
	// ListInWindow falls back to created_at just like EffectiveTime
	capturedAt := in.CapturedAt
	if capturedAt != nil && capturedAt.IsZero() {
		capturedAt = nil
	}

	return &WeightEntry{
		ShipmentID:       in.ShipmentID,
		SupplierCode:     in.SupplierCode,
		VehicleNo:        in.VehicleNo,
		DeclaredWeightKg: in.DeclaredWeightKg,
		GrossWeightKg:    in.GrossWeightKg,
		TareWeightKg:     in.TareWeightKg,
		NetWeightKg:      net,
		Crates:           in.Crates,
		Varieties:        strings.Join(varieties, ","),
		CapturedAt:       capturedAt,
		CreatedBy:        in.Operator,
	}, nil
}

func normalizeVarieties(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, ",") {
			return nil, apperror.Validationf("varieties", "variety %q must not contain a comma", v)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
