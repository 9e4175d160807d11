package service

import (
	"context"
	"lms_backend/internal/event"
	"lms_backend/internal/repository"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const questionObserverPriority = 100

// QuestionObserver 题目被删除后清理测验中残留的作答数据
type QuestionObserver struct {
	DB       *gorm.DB
	Attempts *repository.AttemptRepository
}

func NewQuestionObserver(db *gorm.DB, attempts *repository.AttemptRepository) *QuestionObserver {
	return &QuestionObserver{DB: db, Attempts: attempts}
}

func (o *QuestionObserver) Register(bus *event.Bus) {
	bus.Subscribe(event.QuestionDeleted, questionObserverPriority, o.QuestionDeleted)
}

// QuestionDeleted 删除该题目的题目尝试；用例因此变空时连同引用它的测验尝试一起删除。
// 发布方在事务中时沿用该事务。
func (o *QuestionObserver) QuestionDeleted(ctx context.Context, e event.Event) error {
	var removedUsages int
	err := repository.Conn(ctx, o.DB).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := o.Attempts.WithTx(tx)
		usageIDs, err := attempts.UsageIDsForQuestion(ctx, e.ObjectID)
		if err != nil {
			return err
		}
		if _, err := attempts.DeleteQuestionAttempts(ctx, e.ObjectID); err != nil {
			return err
		}
		for _, usageID := range usageIDs {
			left, err := attempts.CountQuestionAttempts(ctx, usageID)
			if err != nil {
				return err
			}
			if left > 0 {
				continue
			}
			if err := attempts.DeleteUsage(ctx, usageID); err != nil {
				return err
			}
			removedUsages++
		}
		return nil
	})
	if err != nil {
		logger.Log.Error("清理已删除题目的作答数据失败", zap.Uint("question_id", e.ObjectID), zap.Error(err))
		return err
	}
	if removedUsages > 0 {
		logger.Log.Info("已清理题目作答数据", zap.Uint("question_id", e.ObjectID), zap.Int("usages", removedUsages))
	}
	return nil
}
