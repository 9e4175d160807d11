package service

import (
	"testing"

	"lms_backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeSumGradesRounds(t *testing.T) {
	f := newFixture(t)
	f.quiz.DecimalPoints = 1
	require.NoError(t, f.quizzes.UpdateFields(f.ctx, f.quiz.ID, map[string]interface{}{"decimal_points": 1}))

	q1 := f.addQuestion(t, "Q1", "shortanswer")
	q2 := f.addQuestion(t, "Q2", "shortanswer")
	f.addSlot(t, q1, 1, "1.25")
	f.addSlot(t, q2, 1, "1.0")

	// 2.25 -> 2.3
	assert.True(t, decimal.RequireFromString("2.3").Equal(f.quiz.SumGrades), f.quiz.SumGrades.String())

	stored, err := f.quizzes.FindByID(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.True(t, f.quiz.SumGrades.Equal(stored.SumGrades))

	// 重复计算结果不变
	require.NoError(t, f.grades.RecomputeSumGrades(f.ctx, nil, f.quiz))
	assert.Equal(t, "2.3", FormatQuizGrade(f.quiz, f.quiz.SumGrades))
}

func TestRecomputeSumGradesKeepsGradeWithoutAttempts(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	f.addAttempt(t, f.teacher, true)

	require.NoError(t, f.quizzes.DeleteSlot(f.ctx, s1.ID))
	require.NoError(t, f.quizzes.DeleteSlot(f.ctx, s2.ID))
	require.NoError(t, f.grades.RecomputeSumGrades(f.ctx, nil, f.quiz))

	assert.True(t, f.quiz.SumGrades.IsZero())
	// 只有预览，不清零满分
	assert.Equal(t, "10.00", FormatQuizGrade(f.quiz, f.quiz.Grade))
}

func TestFormatQuestionMark(t *testing.T) {
	f := newFixture(t)
	mark := decimal.RequireFromString("0.5")
	assert.Equal(t, "0.50", FormatQuestionMark(f.quiz, mark))

	f.quiz.QuestionDecimalPoints = 0
	assert.Equal(t, "1", FormatQuestionMark(f.quiz, mark))

	f.quiz.QuestionDecimalPoints = 3
	assert.Equal(t, "0.500", FormatQuestionMark(f.quiz, mark))

	whole := model.NewQuiz(f.course.ID, "Whole marks")
	whole.DecimalPoints = 0
	assert.Equal(t, "-1", FormatQuizGrade(whole, decimal.RequireFromString("-0.5")))
}
