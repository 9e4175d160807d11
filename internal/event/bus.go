package event

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// 事件名
const (
	QuestionDeleted       = "question.deleted"
	QuizSlotMoved         = "quiz.slot.moved"
	QuizSlotDeleted       = "quiz.slot.deleted"
	QuizSectionDeleted    = "quiz.section.deleted"
	QuizPreviewsDeleted   = "quiz.previews.deleted"
	BadgeRecipientsViewed = "badge.recipients.downloaded"
	AllEvents             = "*"
)

type Event struct {
	Name     string
	ObjectID uint
	CourseID uint
	UserID   uint
	Data     map[string]interface{}
	Time     time.Time
}

type Handler func(ctx context.Context, e Event) error

type subscription struct {
	name     string
	priority int
	seq      int
	handler  Handler
}

// Bus 同步事件总线：高优先级先执行，同优先级按订阅顺序；首个错误中止分发
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
	seq  int
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe name 为 AllEvents 时接收所有事件
func (b *Bus) Subscribe(name string, priority int, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.subs = append(b.subs, subscription{name: name, priority: priority, seq: b.seq, handler: h})
}

func (b *Bus) handlersFor(name string) []subscription {
	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == name || s.name == AllEvents {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].seq < matched[j].seq
	})
	return matched
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, s := range b.handlersFor(e.Name) {
		if err := s.handler(ctx, e); err != nil {
			return fmt.Errorf("event %s: %w", e.Name, err)
		}
	}
	return nil
}
