package weighbridge

import (
	"context"
	"strings"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *WeightEntry) error
	CreateBatch(ctx context.Context, entries []*WeightEntry) error
	Get(ctx context.Context, id types.SnowflakeID) (*WeightEntry, error)
	Annotate(ctx context.Context, id types.SnowflakeID, note string) (*WeightEntry, error)
	Supersede(ctx context.Context, id types.SnowflakeID, replacement *WeightEntry) error
	ListInWindow(ctx context.Context, w Window) ([]WeightEntry, error)
	ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]WeightEntry, error)
}

type WeightEntryRepository struct {
	db *gorm.DB
}

func NewWeightEntryRepository(db *gorm.DB) *WeightEntryRepository {
	return &WeightEntryRepository{db: db}
}

func (r *WeightEntryRepository) Create(ctx context.Context, e *WeightEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CreateBatch stores every entry or none of them.
func (r *WeightEntryRepository) CreateBatch(ctx context.Context, entries []*WeightEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *WeightEntryRepository) Get(ctx context.Context, id types.SnowflakeID) (*WeightEntry, error) {
	var e WeightEntry
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "id", "weight entry not found")
	}
	return &e, nil
}

// Annotate appends note to the entry's annotation; no other column changes.
func (r *WeightEntryRepository) Annotate(ctx context.Context, id types.SnowflakeID, note string) (*WeightEntry, error) {
	var e WeightEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "id", "weight entry not found")
		}
		notes := strings.TrimSpace(strings.Join([]string{e.Annotation, note}, "\n"))
		if err := tx.Model(&WeightEntry{}).Where("id = ?", id).Update("annotation", notes).Error; err != nil {
			return err
		}
		e.Annotation = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *WeightEntryRepository) Supersede(ctx context.Context, id types.SnowflakeID, replacement *WeightEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&WeightEntry{}).
			Where("id = ? AND superseded = ?", id, false).
			Update("superseded", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("id", "weight entry is missing or already superseded")
		}
		replacement.SupersedesID = &id
		return tx.Create(replacement).Error
	})
}

// ListInWindow uses COALESCE(captured_at, created_at) so that the rows it
// returns are exactly the ones Reconcile counts.
func (r *WeightEntryRepository) ListInWindow(ctx context.Context, w Window) ([]WeightEntry, error) {
	var entries []WeightEntry
	err := r.db.WithContext(ctx).
		Where("superseded = ?", false).
		Where("COALESCE(captured_at, created_at) >= ? AND COALESCE(captured_at, created_at) < ?", w.From, w.To).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

func (r *WeightEntryRepository) ListByShipment(ctx context.Context, shipmentID types.SnowflakeID) ([]WeightEntry, error) {
	var entries []WeightEntry
	err := r.db.WithContext(ctx).
		Where("shipment_id = ? AND superseded = ?", shipmentID, false).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
