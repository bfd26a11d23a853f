package stocktake

import (
	"context"
	"sync"

	"intake-app/apperror"
	"intake-app/types"

	"gorm.io/gorm"
)

// History keeps the most recent stock-take batches, newest first.
type History interface {
	// Create stores r and evicts everything older than the newest limit
	// batches. Both happen or neither does. limit <= 0 keeps everything.
	Create(ctx context.Context, r *Record, limit int) error
	ListRecent(ctx context.Context, k int) ([]Record, error)
	Get(ctx context.Context, id types.SnowflakeID) (*Record, error)
}

type GormHistory struct {
	db *gorm.DB
}

func NewGormHistory(db *gorm.DB) *GormHistory {
	return &GormHistory{db: db}
}

func (h *GormHistory) Create(ctx context.Context, r *Record, limit int) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		if limit <= 0 {
			return nil
		}

		var stale []types.SnowflakeID
		if err := tx.Model(&Record{}).
			Order("id desc").
			Offset(limit).
			Limit(1 << 30).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		if err := tx.Where("record_id IN ?", stale).Delete(&Line{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", stale).Delete(&Record{}).Error
	})
}

func (h *GormHistory) ListRecent(ctx context.Context, k int) ([]Record, error) {
	var records []Record
	q := h.db.WithContext(ctx).Order("id desc")
	if k > 0 {
		q = q.Limit(k)
	}
	err := q.Find(&records).Error
	return records, err
}

func (h *GormHistory) Get(ctx context.Context, id types.SnowflakeID) (*Record, error) {
	var r Record
	err := h.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "id", "stock take not found")
	}
	return &r, nil
}

// MemoryHistory is a ring of the newest batches, for tests and single-node use.
type MemoryHistory struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Create(_ context.Context, r *Record, limit int) error {
	if r.ID == 0 {
		r.ID = types.NewSnowflakeID()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]Record{*r}, h.records...)
	if limit > 0 && len(h.records) > limit {
		h.records = h.records[:limit]
	}
	return nil
}

func (h *MemoryHistory) ListRecent(_ context.Context, k int) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.records)
	if k > 0 && k < n {
		n = k
	}
	out := make([]Record, n)
	copy(out, h.records[:n])
	return out, nil
}

func (h *MemoryHistory) Get(_ context.Context, id types.SnowflakeID) (*Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.records {
		if h.records[i].ID == id {
			r := h.records[i]
			return &r, nil
		}
	}
	return nil, apperror.NotFound("id", "stock take not found")
}
