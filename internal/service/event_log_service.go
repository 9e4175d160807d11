package service

import (
	"context"
	"encoding/json"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"

	"gorm.io/datatypes"
)

// 日志订阅者最后执行，记录的是已经被其它订阅者处理过的事件
const eventLogPriority = -1000

type EventLogService struct {
	Events *repository.EventRepository
}

func NewEventLogService(events *repository.EventRepository) *EventLogService {
	return &EventLogService{Events: events}
}

func (s *EventLogService) Register(bus *event.Bus) {
	bus.Subscribe(event.AllEvents, eventLogPriority, s.Record)
}

func (s *EventLogService) Record(ctx context.Context, e event.Event) error {
	entry := &model.EventLog{
		Name:      e.Name,
		ObjectID:  e.ObjectID,
		CourseID:  e.CourseID,
		UserID:    e.UserID,
		CreatedAt: e.Time,
	}
	if len(e.Data) > 0 {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			return err
		}
		entry.Data = datatypes.JSON(raw)
	}
	return s.Events.Append(ctx, entry)
}

func (s *EventLogService) List(ctx context.Context, name string) ([]*model.EventLog, error) {
	return s.Events.ListByName(ctx, name)
}
