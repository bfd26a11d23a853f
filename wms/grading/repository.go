package grading

import (
	"context"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, rec *CountingRecord) error
	// Supersede flags original as superseded and stores replacement in one transaction.
	Supersede(ctx context.Context, originalID types.SnowflakeID, replacement *CountingRecord) error
	Get(ctx context.Context, id types.SnowflakeID) (*CountingRecord, error)
	FindActiveByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*CountingRecord, error)
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]CountingRecord, error)
}

type CountingRepository struct {
	db *gorm.DB
}

func NewCountingRepository(db *gorm.DB) *CountingRepository {
	return &CountingRepository{db: db}
}

func (r *CountingRepository) Create(ctx context.Context, rec *CountingRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *CountingRepository) Supersede(ctx context.Context, originalID types.SnowflakeID, replacement *CountingRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&CountingRecord{}).
			Where("id = ? AND superseded = ?", originalID, false).
			Update("superseded", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("id", "counting record is missing or already superseded")
		}
		replacement.SupersedesID = &originalID
		return tx.Create(replacement).Error
	})
}

func (r *CountingRepository) Get(ctx context.Context, id types.SnowflakeID) (*CountingRecord, error) {
	var rec CountingRecord
	err := r.db.WithContext(ctx).Preload("Cells").First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "id", "counting record not found")
	}
	return &rec, nil
}

func (r *CountingRepository) FindActiveByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*CountingRecord, error) {
	var rec CountingRecord
	err := r.db.WithContext(ctx).Preload("Cells").
		Where("shipment_id = ? AND pallet_id = ? AND superseded = ?", shipmentID, palletID, false).
		First(&rec).Error
	if err != nil {
		return nil, apperror.FromDB(err, "palletId", "no counting record for pallet")
	}
	return &rec, nil
}

func (r *CountingRepository) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]CountingRecord, error) {
	var recs []CountingRecord
	err := r.db.WithContext(ctx).Preload("Cells").
		Where("shipment_id = ? AND superseded = ?", shipmentID, false).
		Order("submitted_at asc").
		Find(&recs).Error
	return recs, err
}
