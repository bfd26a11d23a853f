package quality

import (
	"context"
	"errors"
	"time"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

type QualityCheck struct {
	ID               types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ShipmentID       types.SnowflakeID `json:"shipment_id" gorm:"index:idx_qc_pallet"`
	PalletID         string            `json:"pallet_id" gorm:"size:50;index:idx_qc_pallet"`
	Product          string            `json:"product" gorm:"size:100"`
	DeclaredWeightKg *float64          `json:"declared_weight_kg" gorm:"default:null"`
	NetWeightKg      float64           `json:"net_weight_kg"`
	RejectedWeightKg float64           `json:"rejected_weight_kg"`
	AcceptedWeightKg float64           `json:"accepted_weight_kg"`
	Packaging        DimensionStatus   `json:"packaging" gorm:"size:20"`
	Freshness        DimensionStatus   `json:"freshness" gorm:"size:20"`
	Seals            DimensionStatus   `json:"seals" gorm:"size:20"`
	Overall          Overall           `json:"overall" gorm:"size:20;index"`
	Score            float64           `json:"score"`
	Edible           bool              `json:"edible"`
	Confidence       float64           `json:"confidence"`
	Ripeness         string            `json:"ripeness" gorm:"size:100"`
	Damage           string            `json:"damage" gorm:"size:255"`
	Manual           bool              `json:"manual"`
	Notes            string            `json:"notes"`
	CheckedBy        string            `json:"checked_by" gorm:"size:100"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (q *QualityCheck) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == 0 {
		q.ID = types.NewSnowflakeID()
	}
	return
}

type Repository interface {
	Create(ctx context.Context, qc *QualityCheck) error
	Get(ctx context.Context, id types.SnowflakeID) (*QualityCheck, error)
	// FindByPallet returns the latest check of the pallet, or nil.
	FindByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*QualityCheck, error)
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]QualityCheck, error)
}

type QualityRepository struct {
	db *gorm.DB
}

func NewQualityRepository(db *gorm.DB) *QualityRepository {
	return &QualityRepository{db: db}
}

func (r *QualityRepository) Create(ctx context.Context, qc *QualityCheck) error {
	return r.db.WithContext(ctx).Create(qc).Error
}

func (r *QualityRepository) Get(ctx context.Context, id types.SnowflakeID) (*QualityCheck, error) {
	var qc QualityCheck
	if err := r.db.WithContext(ctx).First(&qc, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "id", "quality check not found")
	}
	return &qc, nil
}

func (r *QualityRepository) FindByPallet(ctx context.Context, shipmentID types.SnowflakeID, palletID string) (*QualityCheck, error) {
	var qc QualityCheck
	err := r.db.WithContext(ctx).
		Where("shipment_id = ? AND pallet_id = ?", shipmentID, palletID).
		Order("id desc").
		First(&qc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &qc, nil
}

func (r *QualityRepository) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]QualityCheck, error) {
	var checks []QualityCheck
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("id asc").
		Find(&checks).Error
	return checks, err
}
