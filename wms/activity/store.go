package activity

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	Save(ctx context.Context, log ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]ActivityLog, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (r *GormStore) Save(ctx context.Context, log ActivityLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *GormStore) ListRecent(ctx context.Context, limit int) ([]ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []ActivityLog
	err := r.db.WithContext(ctx).
		Order("occurred_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
