package repository

import (
	"context"
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Append(ctx context.Context, e *model.EventLog) error {
	return Conn(ctx, r.DB).WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListByName(ctx context.Context, name string) ([]*model.EventLog, error) {
	var logs []*model.EventLog
	err := r.DB.WithContext(ctx).Where("name = ?", name).Order("id ASC").Find(&logs).Error
	return logs, err
}
