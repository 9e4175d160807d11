package service

import (
	"context"
	"testing"

	"lms_backend/internal/authz"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordEvents(bus *event.Bus) *[]event.Event {
	var got []event.Event
	bus.Subscribe(event.AllEvents, 0, func(_ context.Context, e event.Event) error {
		got = append(got, e)
		return nil
	})
	return &got
}

func eventNames(events []event.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name)
	}
	return out
}

func TestMoveSlotDeletesPreviews(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	f.addAttempt(t, f.teacher, true)
	events := recordEvents(f.bus)

	res, err := f.structure.MoveSlot(f.ctx, f.as(f.teacher), f.quiz.ID, s1.ID, s2.ID, 0, 2)
	require.NoError(t, err)
	assert.True(t, res.Visible)

	st := f.reload(t)
	assert.Equal(t, []uint{s2.ID, s1.ID}, slotIDs(st))
	assert.Equal(t, []string{"1:1", "2:1"}, layout(st))

	previews, err := f.attempts.CountQuizAttempts(f.ctx, f.quiz.ID, true)
	require.NoError(t, err)
	assert.Zero(t, previews)
	assert.Equal(t, []string{event.QuizPreviewsDeleted, event.QuizSlotMoved}, eventNames(*events))
}

func TestMoveSlotToSectionStart(t *testing.T) {
	f := newFixture(t)
	q1 := f.addQuestion(t, "Q1", "shortanswer")
	q2 := f.addQuestion(t, "Q2", "shortanswer")
	q3 := f.addQuestion(t, "Q3", "shortanswer")
	s1 := f.addSlot(t, q1, 1, "1")
	s2 := f.addSlot(t, q2, 2, "1")
	s3 := f.addSlot(t, q3, 3, "1")
	sec := f.addSection(t, 3, "Part 2")

	_, err := f.structure.MoveSlot(f.ctx, f.as(f.teacher), f.quiz.ID, s1.ID, 0, sec.ID, 1)
	require.NoError(t, err)

	st := f.reload(t)
	assert.Equal(t, []uint{s2.ID, s1.ID, s3.ID}, slotIDs(st))
	assert.Equal(t, []string{"1:1", "2:2", "3:2"}, layout(st))
	assert.Equal(t, []int{1, 2}, firstSlots(st))
}

func TestMoveSlotRejectsPageBeyondFollowingSlot(t *testing.T) {
	f := newFixture(t)
	q1 := f.addQuestion(t, "Q1", "shortanswer")
	q2 := f.addQuestion(t, "Q2", "shortanswer")
	q3 := f.addQuestion(t, "Q3", "shortanswer")
	f.addSlot(t, q1, 1, "1")
	f.addSlot(t, q2, 2, "1")
	s3 := f.addSlot(t, q3, 2, "1")
	f.addSection(t, 2, "Part 2")

	_, err := f.structure.MoveSlot(f.ctx, f.as(f.teacher), f.quiz.ID, s3.ID, 0, 0, 2)
	assert.ErrorIs(t, err, util.ErrValidation)

	st := f.reload(t)
	assert.Equal(t, []int{1, 2}, firstSlots(st))
	assert.Equal(t, []string{"1:1", "2:2", "3:2"}, layout(st))
}

func TestMutationsRefusedAfterAttempts(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	f.addAttempt(t, f.student, false)
	ac := f.as(f.teacher)

	_, err := f.structure.MoveSlot(f.ctx, ac, f.quiz.ID, s1.ID, s2.ID, 0, 2)
	assert.ErrorIs(t, err, util.ErrEditForbidden)

	_, err = f.structure.DeleteSlot(f.ctx, ac, f.quiz.ID, s1.ID)
	assert.ErrorIs(t, err, util.ErrEditForbidden)

	_, err = f.structure.UpdatePageBreak(f.ctx, ac, f.quiz.ID, s2.ID, PageBreakJoin)
	assert.ErrorIs(t, err, util.ErrEditForbidden)

	_, err = f.structure.Repaginate(f.ctx, ac, f.quiz.ID, 1)
	assert.ErrorIs(t, err, util.ErrEditForbidden)

	// 标题与分值不受限制
	st := f.reload(t)
	_, err = f.structure.RenameSection(f.ctx, ac, f.quiz.ID, st.Sections[0].ID, "Still editable")
	assert.NoError(t, err)
	_, err = f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.NewFromInt(2))
	assert.NoError(t, err)
}

func TestMutationsRequireQuizManage(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)

	_, err := f.structure.MoveSlot(f.ctx, f.as(f.student), f.quiz.ID, s1.ID, s2.ID, 0, 2)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	other := &model.Course{FullName: "Course 2"}
	require.NoError(t, f.courses.Create(f.ctx, other))
	ac := f.as(f.teacher)
	ac.PageCourseID = other.ID
	_, err = f.structure.DeleteSlot(f.ctx, ac, f.quiz.ID, s1.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.structure.GetMaxMark(f.ctx, f.as(f.admin), f.quiz.ID, s1.ID)
	assert.NoError(t, err)
}

func TestDeleteSlot(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	events := recordEvents(f.bus)

	res, err := f.structure.DeleteSlot(f.ctx, f.as(f.teacher), f.quiz.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, &DeleteSlotsResult{NewSumMarks: "1.00", Deleted: true, NewNumQuestions: 1}, res)

	st := f.reload(t)
	require.Len(t, st.Slots, 1)
	assert.Equal(t, s2.ID, st.Slots[0].ID)
	assert.Equal(t, []string{"1:1"}, layout(st))
	assert.True(t, st.Quiz.SumGrades.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, []string{event.QuizSlotDeleted}, eventNames(*events))
}

func TestDeleteSlotsValidatesAllFirst(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	ac := f.as(f.teacher)

	_, err := f.structure.DeleteSlots(f.ctx, ac, f.quiz.ID, []uint{s1.ID, 999})
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.Len(t, f.reload(t).Slots, 2)

	res, err := f.structure.DeleteSlots(f.ctx, ac, f.quiz.ID, []uint{s1.ID, s2.ID, s1.ID})
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.NewSumMarks)
	assert.Zero(t, res.NewNumQuestions)
	assert.Empty(t, f.reload(t).Slots)
}

func TestDeleteSlotNeedsQuestionUse(t *testing.T) {
	f := newFixture(t)
	s1, _ := f.addShortAnswerQuiz(t)

	// 题目属于教师未选修的课程
	other := &model.Course{FullName: "Private bank"}
	require.NoError(t, f.courses.Create(f.ctx, other))
	cat := &model.QuestionCategory{CourseID: other.ID, Name: "Private"}
	require.NoError(t, f.questions.CreateCategory(f.ctx, cat))
	entry := &model.QuestionBankEntry{CategoryID: cat.ID, OwnerID: f.admin.ID}
	foreign := &model.Question{Name: "Foreign", QType: "truefalse", DefaultMark: decimal.NewFromInt(1), CreatedBy: f.admin.ID}
	require.NoError(t, f.questions.CreateVersion(f.ctx, entry, foreign))
	s3 := f.addSlot(t, foreign, 3, "1")

	_, err := f.structure.DeleteSlots(f.ctx, f.as(f.teacher), f.quiz.ID, []uint{s1.ID, s3.ID})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	assert.Len(t, f.reload(t).Slots, 3)
}

func TestSumGradesZeroWithAttemptsZeroesGrade(t *testing.T) {
	f := newFixture(t)
	q := f.addQuestion(t, "Only", "shortanswer")
	s1 := f.addSlot(t, q, 1, "1")
	ac := f.as(f.teacher)

	// 没有正式作答时满分保持不变
	_, err := f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.Zero)
	require.NoError(t, err)
	quiz, err := f.quizzes.FindByID(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", FormatQuizGrade(quiz, quiz.Grade))

	_, err = f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.NewFromInt(1))
	require.NoError(t, err)
	f.addAttempt(t, f.student, false)

	res, err := f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.NewSumMarks)
	quiz, err = f.quizzes.FindByID(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.True(t, quiz.Grade.IsZero())
}

func TestUpdatePageBreakService(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)

	res, err := f.structure.UpdatePageBreak(f.ctx, f.as(f.teacher), f.quiz.ID, s2.ID, PageBreakJoin)
	require.NoError(t, err)
	assert.Equal(t, map[int]SlotPage{
		1: {ID: s1.ID, Slot: 1, Page: 1},
		2: {ID: s2.ID, Slot: 2, Page: 1},
	}, res.Slots)

	res, err = f.structure.UpdatePageBreak(f.ctx, f.as(f.teacher), f.quiz.ID, s2.ID, PageBreakSplit)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Slots[2].Page)
	assert.Equal(t, []string{"1:1", "2:2"}, layout(f.reload(t)))
}

func TestUpdateDependencyService(t *testing.T) {
	f := newFixture(t)
	s1, s2 := f.addShortAnswerQuiz(t)
	ac := f.as(f.teacher)

	res, err := f.structure.UpdateDependency(f.ctx, ac, f.quiz.ID, s2.ID, true)
	require.NoError(t, err)
	assert.True(t, res.RequirePrevious)
	assert.True(t, f.reload(t).Slots[1].RequirePrevious)

	res, err = f.structure.UpdateDependency(f.ctx, ac, f.quiz.ID, s2.ID, true)
	require.NoError(t, err)
	assert.True(t, res.RequirePrevious)

	_, err = f.structure.UpdateDependency(f.ctx, ac, f.quiz.ID, s1.ID, true)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestSectionOperations(t *testing.T) {
	f := newFixture(t)
	f.addShortAnswerQuiz(t)
	ac := f.as(f.teacher)

	added, err := f.structure.AddSectionHeading(f.ctx, ac, f.quiz.ID, 2, "  Part two ")
	require.NoError(t, err)
	assert.Equal(t, 2, added.FirstSlot)
	assert.Equal(t, "Part two", added.Heading)

	title, err := f.structure.RenameSection(f.ctx, ac, f.quiz.ID, added.ID, " Renamed ")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", title.InstanceSection)

	got, err := f.structure.GetSectionTitle(f.ctx, ac, f.quiz.ID, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.InstanceSection)

	shuffle, err := f.structure.SetSectionShuffle(f.ctx, ac, f.quiz.ID, added.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, shuffle.InstanceShuffle)

	first := f.reload(t).Sections[0]
	_, err = f.structure.DeleteSection(f.ctx, ac, f.quiz.ID, first.ID)
	assert.ErrorIs(t, err, util.ErrInvalidState)

	deleted, err := f.structure.DeleteSection(f.ctx, ac, f.quiz.ID, added.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, []int{1}, firstSlots(f.reload(t)))

	_, err = f.structure.GetSectionTitle(f.ctx, ac, f.quiz.ID, added.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestMaxMarkOperations(t *testing.T) {
	f := newFixture(t)
	s1, _ := f.addShortAnswerQuiz(t)
	f.addAttempt(t, f.student, false)
	ac := f.as(f.teacher)

	got, err := f.structure.GetMaxMark(f.ctx, ac, f.quiz.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.00", got.InstanceMaxMark)

	res, err := f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.RequireFromString("2.5"))
	require.NoError(t, err)
	assert.Equal(t, "2.50", res.InstanceMaxMark)
	assert.Equal(t, "3.50", res.NewSumMarks)

	var marks []decimal.Decimal
	require.NoError(t, f.db.Model(&model.QuestionAttempt{}).Where("slot = ?", 1).Pluck("max_mark", &marks).Error)
	require.Len(t, marks, 1)
	assert.True(t, marks[0].Equal(decimal.RequireFromString("2.5")))

	_, err = f.structure.UpdateMaxMark(f.ctx, ac, f.quiz.ID, s1.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestRepaginateService(t *testing.T) {
	f := newFixture(t)
	f.addShortAnswerQuiz(t)
	q3 := f.addQuestion(t, "Q3", "shortanswer")
	f.addSlot(t, q3, 3, "1")

	res, err := f.structure.Repaginate(f.ctx, f.as(f.teacher), f.quiz.ID, 0)
	require.NoError(t, err)
	for _, sp := range res.Slots {
		assert.Equal(t, 1, sp.Page)
	}
	quiz, err := f.quizzes.FindByID(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, quiz.QuestionsPerPage)
}

func TestUpdateMaximumGrade(t *testing.T) {
	f := newFixture(t)
	f.addShortAnswerQuiz(t)

	res, err := f.structure.UpdateMaximumGrade(f.ctx, f.as(f.teacher), f.quiz.ID, decimal.RequireFromString("7.456"))
	require.NoError(t, err)
	assert.Equal(t, "7.46", res.Grade)

	_, err = f.structure.UpdateMaximumGrade(f.ctx, authz.AuthorizationContext{UserID: f.student.ID}, f.quiz.ID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestUnknownQuiz(t *testing.T) {
	f := newFixture(t)
	_, err := f.structure.MoveSlot(f.ctx, f.as(f.teacher), 999, 1, 0, 0, 1)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
