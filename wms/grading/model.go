package grading

import (
	"time"

	"intake-app/types"

	"gorm.io/gorm"
)

// CountingRecord is one grading session for a pallet. Totals are never
// stored; they are recomputed from Cells.
type CountingRecord struct {
	ID            types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	ShipmentID    types.SnowflakeID  `json:"shipment_id" gorm:"index"`
	SupplierCode  string             `json:"supplier_code" gorm:"size:50;index"`
	PalletID      string             `json:"pallet_id" gorm:"size:50;index"`
	TotalWeightKg float64            `json:"total_weight_kg"`
	SubmittedBy   string             `json:"submitted_by" gorm:"size:100"`
	SubmittedAt   time.Time          `json:"submitted_at"`
	SupersedesID  *types.SnowflakeID `json:"supersedes_id" gorm:"default:null"`
	Superseded    bool               `json:"superseded" gorm:"default:false;index"`
	Cells         []CountingCell     `json:"cells" gorm:"foreignKey:CountingRecordID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (r *CountingRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == 0 {
		r.ID = types.NewSnowflakeID()
	}
	return
}

type CountingCell struct {
	ID               uint              `json:"-" gorm:"primaryKey"`
	CountingRecordID types.SnowflakeID `json:"-" gorm:"index"`
	Variety          string            `json:"variety" gorm:"size:50"`
	PackSize         string            `json:"pack_size" gorm:"size:20"`
	Class            int               `json:"class"`
	SizeCode         int               `json:"size_code"`
	Boxes            int               `json:"boxes"`
}

// Matrix rebuilds the grading matrix from the stored cells.
func (r *CountingRecord) Matrix() Matrix {
	m := make(Matrix, len(r.Cells))
	for _, c := range r.Cells {
		k := CellKey{Variety: c.Variety, PackSize: c.PackSize, Class: c.Class, SizeCode: c.SizeCode}
		m[k] += c.Boxes
	}
	return m
}

func cellsFromMatrix(m Matrix) []CountingCell {
	cells := m.Cells()
	out := make([]CountingCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, CountingCell{
			Variety:  c.Variety,
			PackSize: c.PackSize,
			Class:    c.Class,
			SizeCode: c.SizeCode,
			Boxes:    c.Boxes,
		})
	}
	return out
}
