package service

import (
	"context"
	"errors"
	"testing"

	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionBank(f *fixture) *QuestionBankService {
	observer := NewQuestionObserver(f.db, f.attempts)
	observer.Register(f.bus)
	return NewQuestionBankService(f.db, f.questions, f.attempts, f.users, f.gate, nil, f.bus)
}

// addVersion 在已有题目的条目下追加新版本
func (f *fixture) addVersion(t *testing.T, q *model.Question) *model.Question {
	t.Helper()
	entry, err := f.questions.FindEntry(f.ctx, q.BankEntryID)
	require.NoError(t, err)
	next := &model.Question{
		Name:        q.Name,
		QType:       q.QType,
		DefaultMark: decimal.NewFromInt(1),
		CreatedBy:   q.CreatedBy,
	}
	require.NoError(t, f.questions.CreateVersion(f.ctx, entry, next))
	return next
}

func TestDeleteConfirmationMessage(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	ac := f.as(f.teacher)
	qb := f.addQuestion(t, "Beta", "shortanswer")
	qa := f.addQuestion(t, "Alpha", "shortanswer")

	t.Run("selected versions", func(t *testing.T) {
		res, err := bank.DeleteConfirmation(f.ctx, ac, []uint{qb.ID, qa.ID}, false)
		require.NoError(t, err)
		assert.Equal(t, DeleteSelectedQuestionCheck+"\nAlpha\nBeta\n", res.Message)
		assert.False(t, res.InUse)
	})

	t.Run("all versions of single-version questions", func(t *testing.T) {
		res, err := bank.DeleteConfirmation(f.ctx, ac, []uint{qa.ID}, true)
		require.NoError(t, err)
		assert.Equal(t, DeleteQuestionsCheck+"\nAlpha v1\n", res.Message)
	})

	t.Run("all versions with history and usage", func(t *testing.T) {
		f.addVersion(t, qa)
		f.addSlot(t, qa, 1, "1")
		res, err := bank.DeleteConfirmation(f.ctx, ac, []uint{qa.ID}, true)
		require.NoError(t, err)
		assert.True(t, res.HasMultipleVersion)
		assert.True(t, res.InUse)
		assert.Equal(t, DeleteQuestionsAllVersionCheck+"\nAlpha v1\n* Alpha v2\n\n"+QuestionsInUse, res.Message)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := bank.DeleteConfirmation(f.ctx, ac, nil, false)
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}

func TestDeleteQuestionsHidesInUse(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	events := recordEvents(f.bus)
	used := f.addQuestion(t, "Used", "shortanswer")
	unused := f.addQuestion(t, "Unused", "shortanswer")
	f.addSlot(t, used, 1, "1")

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{used.ID, unused.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{unused.ID}, res.Deleted)
	assert.Equal(t, []uint{used.ID}, res.Hidden)

	hidden, err := f.questions.FindByID(f.ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuestionHidden, hidden.Status)

	_, err = f.questions.FindByID(f.ctx, unused.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.questions.FindEntry(f.ctx, unused.BankEntryID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	require.Len(t, *events, 1)
	assert.Equal(t, event.QuestionDeleted, (*events)[0].Name)
	assert.Equal(t, unused.ID, (*events)[0].ObjectID)
	assert.Equal(t, f.course.ID, (*events)[0].CourseID)
}

func TestDeleteQuestionsPinnedVersion(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	v1 := f.addQuestion(t, "Pinned", "shortanswer")
	v2 := f.addVersion(t, v1)
	slot := f.addSlot(t, v1, 1, "1")
	pinned := 1
	require.NoError(t, f.quizzes.UpdateSlot(f.ctx, slot.ID, map[string]interface{}{"version": &pinned}))

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{v1.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint{v2.ID}, res.Deleted)
	assert.Equal(t, []uint{v1.ID}, res.Hidden)

	_, err = f.questions.FindEntry(f.ctx, v1.BankEntryID)
	assert.NoError(t, err)
}

func TestDeleteQuestionsRequiresEdit(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	q := f.addQuestion(t, "Q", "shortanswer")

	_, err := bank.Delete(f.ctx, f.as(f.student), []uint{q.ID}, false)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.questions.FindByID(f.ctx, q.ID)
	assert.NoError(t, err)
}

func TestQuestionDeletedCleansAttempts(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	q1 := f.addQuestion(t, "Q1", "shortanswer")
	q2 := f.addQuestion(t, "Q2", "shortanswer")
	s1 := f.addSlot(t, q1, 1, "1")
	f.addSlot(t, q2, 1, "1")

	// 两道题的作答，其中一个用例只含 q1
	shared := f.addAttempt(t, f.student, false)
	require.NoError(t, f.quizzes.DeleteSlot(f.ctx, s1.ID))
	onlyQ1 := &model.QuestionUsage{Component: "mod_quiz", CourseID: f.course.ID}
	require.NoError(t, f.attempts.CreateUsage(f.ctx, onlyQ1))
	require.NoError(t, f.attempts.CreateQuestionAttempt(f.ctx, &model.QuestionAttempt{
		UsageID: onlyQ1.ID, Slot: 1, QuestionID: q1.ID, MaxMark: decimal.NewFromInt(1),
	}))
	require.NoError(t, f.attempts.CreateQuizAttempt(f.ctx, &model.QuizAttempt{
		QuizID: f.quiz.ID, UserID: f.teacher.ID, Attempt: 1, UniqueID: onlyQ1.ID, State: model.AttemptFinished,
	}))

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{q1.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{q1.ID}, res.Deleted)

	left, err := f.attempts.CountQuestionAttempts(f.ctx, shared.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)

	left, err = f.attempts.CountQuestionAttempts(f.ctx, onlyQ1.ID)
	require.NoError(t, err)
	assert.Zero(t, left)

	count, err := f.attempts.CountQuizAttempts(f.ctx, f.quiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// addFinishedAttempt 单独的用例，只含 q 的一次作答
func (f *fixture) addFinishedAttempt(t *testing.T, q *model.Question) *model.QuestionUsage {
	t.Helper()
	usage := &model.QuestionUsage{Component: "mod_quiz", CourseID: f.course.ID}
	require.NoError(t, f.attempts.CreateUsage(f.ctx, usage))
	require.NoError(t, f.attempts.CreateQuestionAttempt(f.ctx, &model.QuestionAttempt{
		UsageID: usage.ID, Slot: 1, QuestionID: q.ID, MaxMark: decimal.NewFromInt(1),
	}))
	count, err := f.attempts.CountQuizAttempts(f.ctx, f.quiz.ID, false)
	require.NoError(t, err)
	require.NoError(t, f.attempts.CreateQuizAttempt(f.ctx, &model.QuizAttempt{
		QuizID: f.quiz.ID, UserID: f.student.ID, Attempt: int(count) + 1, UniqueID: usage.ID, State: model.AttemptFinished,
	}))
	return usage
}

func TestDeleteAllVersionsCascadesToAttempts(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	v1 := f.addQuestion(t, "Versioned", "shortanswer")
	v2 := f.addVersion(t, v1)
	other := f.addQuestion(t, "Other", "shortanswer")

	u1 := f.addFinishedAttempt(t, v1)
	u2 := f.addFinishedAttempt(t, v2)
	kept := f.addFinishedAttempt(t, other)

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{v1.ID}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{v1.ID, v2.ID}, res.Deleted)
	assert.Empty(t, res.Hidden)

	for _, usage := range []*model.QuestionUsage{u1, u2} {
		left, err := f.attempts.CountQuestionAttempts(f.ctx, usage.ID)
		require.NoError(t, err)
		assert.Zero(t, left)
		var usages int64
		require.NoError(t, f.db.Model(&model.QuestionUsage{}).Where("id = ?", usage.ID).Count(&usages).Error)
		assert.Zero(t, usages)
	}

	left, err := f.attempts.CountQuestionAttempts(f.ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)

	var remaining []model.QuizAttempt
	require.NoError(t, f.db.Where("quiz_id = ?", f.quiz.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].UniqueID)

	_, err = f.questions.FindEntry(f.ctx, v1.BankEntryID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestDeleteQuestionsRollsBackWhenSubscriberFails(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	repo := repository.NewEventRepository(f.db)
	NewEventLogService(repo).Register(f.bus)
	boom := errors.New("subscriber failed")
	f.bus.Subscribe(event.QuestionDeleted, 0, func(context.Context, event.Event) error { return boom })

	q := f.addQuestion(t, "Q", "shortanswer")
	usage := f.addFinishedAttempt(t, q)

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{q.ID}, false)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)

	_, err = f.questions.FindByID(f.ctx, q.ID)
	assert.NoError(t, err)
	left, err := f.attempts.CountQuestionAttempts(f.ctx, usage.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)
	count, err := f.attempts.CountQuizAttempts(f.ctx, f.quiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	logs, err := repo.ListByName(f.ctx, event.QuestionDeleted)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDeleteQuestionsInvalidatesEditPages(t *testing.T) {
	f := newFixture(t)
	cache, mr := newRedisCache(t)
	NewQuestionObserver(f.db, f.attempts).Register(f.bus)
	bank := NewQuestionBankService(f.db, f.questions, f.attempts, f.users, f.gate, cache, f.bus)

	used := f.addQuestion(t, "Used", "shortanswer")
	f.addSlot(t, used, 1, "1")
	other := model.NewQuiz(f.course.ID, "Quiz 2")
	require.NoError(t, f.quizzes.Create(f.ctx, other))
	unrelated := model.NewQuiz(f.course.ID, "Quiz 3")
	require.NoError(t, f.quizzes.Create(f.ctx, unrelated))

	// other 只有作答引用被删除的题目
	attempted := f.addQuestion(t, "Attempted", "shortanswer")
	usage := &model.QuestionUsage{Component: "mod_quiz", CourseID: f.course.ID}
	require.NoError(t, f.attempts.CreateUsage(f.ctx, usage))
	require.NoError(t, f.attempts.CreateQuestionAttempt(f.ctx, &model.QuestionAttempt{
		UsageID: usage.ID, Slot: 1, QuestionID: attempted.ID, MaxMark: decimal.NewFromInt(1),
	}))
	require.NoError(t, f.attempts.CreateQuizAttempt(f.ctx, &model.QuizAttempt{
		QuizID: other.ID, UserID: f.student.ID, Attempt: 1, UniqueID: usage.ID, State: model.AttemptFinished,
	}))

	for _, id := range []uint{f.quiz.ID, other.ID, unrelated.ID} {
		cache.SetEditPage(f.ctx, id, &EditPage{QuizID: id})
	}

	res, err := bank.Delete(f.ctx, f.as(f.teacher), []uint{used.ID, attempted.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{used.ID}, res.Hidden)
	assert.Equal(t, []uint{attempted.ID}, res.Deleted)

	assert.False(t, mr.Exists(editPageKey(f.quiz.ID)))
	assert.False(t, mr.Exists(editPageKey(other.ID)))
	assert.True(t, mr.Exists(editPageKey(unrelated.ID)))
}

func TestVersionInfo(t *testing.T) {
	f := newFixture(t)
	bank := newQuestionBank(f)
	v1 := f.addQuestion(t, "Versioned", "shortanswer")
	v2 := f.addVersion(t, v1)

	info, err := bank.VersionInfo(f.ctx, f.as(f.teacher), v2.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.BankEntryID, info.EntryID)
	assert.Equal(t, 2, info.VersionNumber)
	assert.Equal(t, "Version 2 (latest)", info.VersionInfo)
	assert.Contains(t, info.CreatedBy, "Created by Teacher1 Tester on ")

	info, err = bank.VersionInfo(f.ctx, f.as(f.teacher), v1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Version 1", info.VersionInfo)

	_, err = bank.VersionInfo(f.ctx, f.as(f.student), v1.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestEventLogRecordsEveryEvent(t *testing.T) {
	f := newFixture(t)
	repo := repository.NewEventRepository(f.db)
	NewEventLogService(repo).Register(f.bus)
	s1, _ := f.addShortAnswerQuiz(t)

	_, err := f.structure.DeleteSlot(f.ctx, f.as(f.teacher), f.quiz.ID, s1.ID)
	require.NoError(t, err)

	logs, err := repo.ListByName(f.ctx, event.QuizSlotDeleted)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, s1.ID, logs[0].ObjectID)
	assert.Equal(t, f.teacher.ID, logs[0].UserID)
}
