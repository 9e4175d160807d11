package repository

import (
	"context"
	"lms_backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

// HasNonPreviewAttempts 是否存在正式（非预览）尝试
func (r *AttemptRepository) HasNonPreviewAttempts(ctx context.Context, quizID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND preview = ?", quizID, false).Count(&count).Error
	return count > 0, err
}

// DeletePreviews 删除测验的预览尝试及其题目用例数据，返回删除的尝试数
func (r *AttemptRepository) DeletePreviews(ctx context.Context, quizID uint) (int, error) {
	db := r.DB.WithContext(ctx)

	var usageIDs []uint
	if err := db.Model(&model.QuizAttempt{}).Where("quiz_id = ? AND preview = ?", quizID, true).
		Pluck("unique_id", &usageIDs).Error; err != nil {
		return 0, err
	}
	if len(usageIDs) == 0 {
		return 0, nil
	}

	if err := db.Where("usage_id IN ?", usageIDs).Delete(&model.QuestionAttempt{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("id IN ?", usageIDs).Delete(&model.QuestionUsage{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("quiz_id = ? AND preview = ?", quizID, true).Delete(&model.QuizAttempt{})
	return int(res.RowsAffected), res.Error
}

// UsageIDsForQuestion 包含该题目尝试的用例
func (r *AttemptRepository) UsageIDsForQuestion(ctx context.Context, questionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.QuestionAttempt{}).
		Where("question_id = ?", questionID).Distinct().Pluck("usage_id", &ids).Error
	return ids, err
}

// QuizIDsForQuestions 含有这些题目作答的测验
func (r *AttemptRepository) QuizIDsForQuestions(ctx context.Context, questionIDs []uint) ([]uint, error) {
	var ids []uint
	if len(questionIDs) == 0 {
		return ids, nil
	}
	db := r.DB.WithContext(ctx)
	usageIDs := db.Model(&model.QuestionAttempt{}).Select("usage_id").Where("question_id IN ?", questionIDs)
	err := db.Model(&model.QuizAttempt{}).
		Where("unique_id IN (?)", usageIDs).Distinct().Pluck("quiz_id", &ids).Error
	return ids, err
}

func (r *AttemptRepository) DeleteQuestionAttempts(ctx context.Context, questionID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("question_id = ?", questionID).Delete(&model.QuestionAttempt{})
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) CountQuestionAttempts(ctx context.Context, usageID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuestionAttempt{}).Where("usage_id = ?", usageID).Count(&count).Error
	return count, err
}

// DeleteUsage 删除用例以及引用它的测验尝试
func (r *AttemptRepository) DeleteUsage(ctx context.Context, usageID uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("unique_id = ?", usageID).Delete(&model.QuizAttempt{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.QuestionUsage{}, usageID).Error
}

// SetMaxMarkInAttempts 同步正式尝试中对应槽位的满分
func (r *AttemptRepository) SetMaxMarkInAttempts(ctx context.Context, quizID uint, slot int, mark decimal.Decimal) error {
	db := r.DB.WithContext(ctx)
	usageIDs := db.Model(&model.QuizAttempt{}).Select("unique_id").Where("quiz_id = ? AND preview = ?", quizID, false)
	return db.Model(&model.QuestionAttempt{}).
		Where("slot = ? AND usage_id IN (?)", slot, usageIDs).
		Update("max_mark", mark).Error
}

func (r *AttemptRepository) CreateUsage(ctx context.Context, u *model.QuestionUsage) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *AttemptRepository) CreateQuestionAttempt(ctx context.Context, qa *model.QuestionAttempt) error {
	return r.DB.WithContext(ctx).Create(qa).Error
}

func (r *AttemptRepository) CreateQuizAttempt(ctx context.Context, a *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AttemptRepository) CountQuizAttempts(ctx context.Context, quizID uint, preview bool) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND preview = ?", quizID, preview).Count(&count).Error
	return count, err
}
