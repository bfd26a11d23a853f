package grn

import (
	"context"
	"time"

	"intake-app/types"

	"gorm.io/gorm"
)

type GRNLine struct {
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ShipmentID types.SnowflakeID `json:"shipment_id" gorm:"index"`
	Variety    string            `json:"variety" gorm:"size:50"`
	WeightKg   float64           `json:"weight_kg"`
	Crates     int               `json:"crates"`
	SourceAt   time.Time         `json:"source_at"`
	CreatedBy  string            `json:"created_by" gorm:"size:100"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (l *GRNLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == 0 {
		l.ID = types.NewSnowflakeID()
	}
	return
}

type Repository interface {
	// Replace swaps the shipment's GRN lines for lines in one transaction.
	Replace(ctx context.Context, shipmentID types.SnowflakeID, lines []GRNLine) error
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]GRNLine, error)
}

type GRNRepository struct {
	db *gorm.DB
}

func NewGRNRepository(db *gorm.DB) *GRNRepository {
	return &GRNRepository{db: db}
}

func (r *GRNRepository) Replace(ctx context.Context, shipmentID types.SnowflakeID, lines []GRNLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shipment_id = ?", shipmentID).Delete(&GRNLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *GRNRepository) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]GRNLine, error) {
	var lines []GRNLine
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("variety asc").
		Find(&lines).Error
	return lines, err
}
