package shipment

import (
	"context"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *Shipment, first *StatusChange) error
	Get(ctx context.Context, id types.SnowflakeID) (*Shipment, error)
	List(ctx context.Context, status Status, limit int) ([]Shipment, error)
	// SaveStatus writes the shipment's status columns and the audit row together.
	SaveStatus(ctx context.Context, s *Shipment, change *StatusChange) error
	History(ctx context.Context, id types.SnowflakeID) ([]StatusChange, error)
}

type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *Shipment, first *StatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		first.ShipmentID = s.ID
		return tx.Create(first).Error
	})
}

func (r *ShipmentRepository) Get(ctx context.Context, id types.SnowflakeID) (*Shipment, error) {
	var s Shipment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "shipment_id", "shipment not found")
	}
	return &s, nil
}

func (r *ShipmentRepository) List(ctx context.Context, status Status, limit int) ([]Shipment, error) {
	var shipments []Shipment
	q := r.db.WithContext(ctx).Order("id desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&shipments).Error
	return shipments, err
}

func (r *ShipmentRepository) SaveStatus(ctx context.Context, s *Shipment, change *StatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		return tx.Create(change).Error
	})
}

func (r *ShipmentRepository) History(ctx context.Context, id types.SnowflakeID) ([]StatusChange, error) {
	var changes []StatusChange
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", id).
		Order("id asc").
		Find(&changes).Error
	return changes, err
}
