package service

import (
	"context"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GradeCalculator 维护测验总分 sumgrades，并按测验设置格式化分数
type GradeCalculator struct {
	Quizzes  *repository.QuizRepository
	Attempts *repository.AttemptRepository
}

func NewGradeCalculator(quizzes *repository.QuizRepository, attempts *repository.AttemptRepository) *GradeCalculator {
	return &GradeCalculator{Quizzes: quizzes, Attempts: attempts}
}

// RecomputeSumGrades 重新汇总槽位最高分。总分变为 0 且已有正式作答时，测验满分同时清零。
// tx 为 nil 时使用仓库自身的连接。
func (g *GradeCalculator) RecomputeSumGrades(ctx context.Context, tx *gorm.DB, quiz *model.Quiz) error {
	quizzes, attempts := g.Quizzes, g.Attempts
	if tx != nil {
		quizzes, attempts = quizzes.WithTx(tx), attempts.WithTx(tx)
	}

	sum, err := quizzes.SumMaxMarks(ctx, quiz.ID)
	if err != nil {
		return err
	}
	sum = util.RoundGrade(sum, quiz.DecimalPoints)

	fields := map[string]interface{}{"sum_grades": sum}
	if sum.IsZero() {
		attempted, err := attempts.HasNonPreviewAttempts(ctx, quiz.ID)
		if err != nil {
			return err
		}
		if attempted {
			fields["grade"] = decimal.Zero
		}
	}
	if err := quizzes.UpdateFields(ctx, quiz.ID, fields); err != nil {
		return err
	}

	quiz.SumGrades = sum
	if _, ok := fields["grade"]; ok {
		quiz.Grade = decimal.Zero
	}
	return nil
}

func FormatQuizGrade(quiz *model.Quiz, v decimal.Decimal) string {
	return util.FormatGrade(v, quiz.DecimalPoints)
}

// FormatQuestionMark questiondecimalpoints 为 -1 时沿用测验精度
func FormatQuestionMark(quiz *model.Quiz, v decimal.Decimal) string {
	places := quiz.QuestionDecimalPoints
	if places == -1 {
		places = quiz.DecimalPoints
	}
	return util.FormatGrade(v, places)
}
