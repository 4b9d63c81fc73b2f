package persistence

import (
	"context"

	"github.com/farmsaathi/backend/internal/domain/activity"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements activity.Repository
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates an activity log repository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends an entry
func (r *GormActivityLogRepository) Create(ctx context.Context, entry *activity.Log) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindAll returns one page of entries, newest first
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter activity.Filter) ([]activity.Log, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&activity.Log{})
		if filter.UserID != nil {
			q = q.Where("user_id = ?", *filter.UserID)
		}
		if filter.Module != "" {
			q = q.Where("module = ?", filter.Module)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := query().Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []activity.Log
	if err := q.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

var _ activity.Repository = (*GormActivityLogRepository)(nil)
