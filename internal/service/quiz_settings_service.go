package service

import (
	"context"
	"fmt"
	"lms_backend/internal/authz"
	"lms_backend/internal/form"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
)

// TimeLimitView 限时设置的表单展示
type TimeLimitView struct {
	TimeLimit int         `json:"timelimit"`
	Value     int         `json:"value"`
	TimeUnit  int         `json:"timeunit"`
	Text      string      `json:"text"`
	Units     []form.Unit `json:"units"`
}

type QuizSettingsService struct {
	Quizzes *repository.QuizRepository
	Gate    *authz.Gate
	// TimeLimit 限时字段，默认单位为分钟
	TimeLimit *form.DurationField
}

func NewQuizSettingsService(quizzes *repository.QuizRepository, gate *authz.Gate) *QuizSettingsService {
	field := form.NewDurationField()
	field.DefaultUnit = form.MinuteSecs
	return &QuizSettingsService{Quizzes: quizzes, Gate: gate, TimeLimit: field}
}

func (s *QuizSettingsService) view(seconds int) *TimeLimitView {
	value, unit := s.TimeLimit.SecondsToUnit(seconds)
	disabled := "Disabled"
	return &TimeLimitView{
		TimeLimit: seconds,
		Value:     value,
		TimeUnit:  unit,
		Text:      s.TimeLimit.DurationText(seconds, &disabled),
		Units:     s.TimeLimit.UnitsUsed(),
	}
}

func (s *QuizSettingsService) GetTimeLimit(ctx context.Context, ac authz.AuthorizationContext, quizID uint) (*TimeLimitView, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Require(ctx, ac, quiz.CourseID, authz.QuizManage); err != nil {
		return nil, err
	}
	return s.view(quiz.TimeLimit), nil
}

// UpdateTimeLimit 未提交数值时视为关闭限时
func (s *QuizSettingsService) UpdateTimeLimit(ctx context.Context, ac authz.AuthorizationContext, quizID uint, v form.DurationValue) (*TimeLimitView, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Require(ctx, ac, quiz.CourseID, authz.QuizManage); err != nil {
		return nil, err
	}
	if msg := s.TimeLimit.ValidateSubmit(v); msg != "" {
		return nil, fmt.Errorf("%w: %s", util.ErrValidation, msg)
	}
	seconds, _, err := s.TimeLimit.ExportValue(v)
	if err != nil {
		return nil, err
	}

	if err := s.Quizzes.UpdateFields(ctx, quizID, map[string]interface{}{"time_limit": seconds}); err != nil {
		return nil, err
	}
	logger.Log.Info("测验限时已更新",
		zap.Uint("quiz_id", quizID),
		zap.Uint("user_id", ac.UserID),
		zap.Int("seconds", seconds))
	return s.view(seconds), nil
}
