package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"lms_backend/internal/authz"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, "Test site"))
	return db
}

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	users     *repository.UserRepository
	courses   *repository.CourseRepository
	quizzes   *repository.QuizRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
	gate      *authz.Gate
	bus       *event.Bus
	grades    *GradeCalculator
	structure *StructureService

	course   *model.Course
	teacher  *model.User
	student  *model.User
	admin    *model.User
	category *model.QuestionCategory
	quiz     *model.Quiz
}

// newFixture 一门课程、一名编辑教师、一名学生和一个空测验
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		users:     repository.NewUserRepository(db),
		courses:   repository.NewCourseRepository(db),
		quizzes:   repository.NewQuizRepository(db),
		questions: repository.NewQuestionRepository(db),
		attempts:  repository.NewAttemptRepository(db),
		bus:       event.NewBus(),
	}
	f.gate = authz.NewGate(f.courses, authz.DefaultChecker())
	f.grades = NewGradeCalculator(f.quizzes, f.attempts)
	f.structure = NewStructureService(db, f.quizzes, f.questions, f.attempts, f.gate, f.grades, nil, f.bus)

	f.course = &model.Course{FullName: "Course 1", ShortName: "C1", EnableCompletion: true, ShowReports: true}
	require.NoError(t, f.courses.Create(f.ctx, f.course))

	f.teacher = f.addUser(t, "teacher1", model.SiteUser)
	f.student = f.addUser(t, "student1", model.SiteUser)
	f.admin = f.addUser(t, "admin", model.SiteAdmin)
	require.NoError(t, f.courses.Enrol(f.ctx, f.course.ID, f.teacher.ID, model.RoleEditingTeacher))
	require.NoError(t, f.courses.Enrol(f.ctx, f.course.ID, f.student.ID, model.RoleStudent))

	f.category = &model.QuestionCategory{CourseID: f.course.ID, Name: "Default for C1"}
	require.NoError(t, f.questions.CreateCategory(f.ctx, f.category))

	f.quiz = model.NewQuiz(f.course.ID, "Quiz 1")
	require.NoError(t, f.quizzes.Create(f.ctx, f.quiz))
	return f
}

func (f *fixture) addUser(t *testing.T, username string, role model.SiteRole) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Password:  "x",
		SiteRole:  role,
	}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) as(u *model.User) authz.AuthorizationContext {
	return authz.AuthorizationContext{UserID: u.ID, SiteRole: u.SiteRole}
}

// addQuestion 新建题库条目与第一个版本
func (f *fixture) addQuestion(t *testing.T, name, qtype string) *model.Question {
	t.Helper()
	entry := &model.QuestionBankEntry{CategoryID: f.category.ID, OwnerID: f.teacher.ID}
	q := &model.Question{
		Name:         name,
		QuestionText: "Text of " + name,
		QType:        qtype,
		DefaultMark:  decimal.NewFromInt(1),
		CreatedBy:    f.teacher.ID,
	}
	require.NoError(t, f.questions.CreateVersion(f.ctx, entry, q))
	return q
}

// addSlot 追加到测验末尾
func (f *fixture) addSlot(t *testing.T, q *model.Question, page int, mark string) *model.QuizSlot {
	t.Helper()
	slots, err := f.quizzes.Slots(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	slot := &model.QuizSlot{
		QuizID:              f.quiz.ID,
		Slot:                len(slots) + 1,
		Page:                page,
		MaxMark:             decimal.RequireFromString(mark),
		QuestionBankEntryID: q.BankEntryID,
	}
	require.NoError(t, f.quizzes.AddSlot(f.ctx, slot))
	require.NoError(t, f.grades.RecomputeSumGrades(f.ctx, nil, f.quiz))
	return slot
}

// addShortAnswerQuiz 两道 1 分简答题，第 1、2 页
func (f *fixture) addShortAnswerQuiz(t *testing.T) (*model.QuizSlot, *model.QuizSlot) {
	t.Helper()
	q1 := f.addQuestion(t, "Question 1", "shortanswer")
	q2 := f.addQuestion(t, "Question 2", "shortanswer")
	return f.addSlot(t, q1, 1, "1"), f.addSlot(t, q2, 2, "1")
}

func (f *fixture) addSection(t *testing.T, firstSlot int, heading string) *model.QuizSection {
	t.Helper()
	sec := &model.QuizSection{QuizID: f.quiz.ID, FirstSlot: firstSlot, Heading: heading}
	require.NoError(t, f.quizzes.CreateSection(f.ctx, sec))
	return sec
}

// addAttempt 为测验当前每个槽位建立题目尝试
func (f *fixture) addAttempt(t *testing.T, user *model.User, preview bool) *model.QuizAttempt {
	t.Helper()
	usage := &model.QuestionUsage{Component: "mod_quiz", CourseID: f.course.ID}
	require.NoError(t, f.attempts.CreateUsage(f.ctx, usage))

	st, err := f.structure.LoadStructure(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	for _, slot := range st.Slots {
		q := st.Question(slot.ID)
		require.NotNil(t, q)
		require.NoError(t, f.attempts.CreateQuestionAttempt(f.ctx, &model.QuestionAttempt{
			UsageID:    usage.ID,
			Slot:       slot.Slot,
			QuestionID: q.ID,
			MaxMark:    slot.MaxMark,
		}))
	}

	count, err := f.attempts.CountQuizAttempts(f.ctx, f.quiz.ID, preview)
	require.NoError(t, err)
	a := &model.QuizAttempt{
		QuizID:    f.quiz.ID,
		UserID:    user.ID,
		Attempt:   int(count) + 1,
		UniqueID:  usage.ID,
		Preview:   preview,
		State:     model.AttemptInProgress,
		TimeStart: time.Now(),
	}
	require.NoError(t, f.attempts.CreateQuizAttempt(f.ctx, a))
	return a
}

func (f *fixture) reload(t *testing.T) *Structure {
	t.Helper()
	st, err := f.structure.LoadStructure(f.ctx, f.quiz.ID)
	require.NoError(t, err)
	return st
}

// layout 每个槽位的 "slot:page"，便于断言
func layout(st *Structure) []string {
	out := make([]string, 0, len(st.Slots))
	for _, s := range st.Slots {
		out = append(out, fmt.Sprintf("%d:%d", s.Slot, s.Page))
	}
	return out
}

func firstSlots(st *Structure) []int {
	out := make([]int, 0, len(st.Sections))
	for _, sec := range st.Sections {
		out = append(out, sec.FirstSlot)
	}
	return out
}
