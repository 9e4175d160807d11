package service

import (
	"context"
	"fmt"
	"lms_backend/internal/authz"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 删除确认提示文本
const (
	DeleteSelectedQuestionCheck    = "Are you sure you want to delete the following selected question versions?"
	DeleteQuestionsCheck           = "Are you sure you want to delete the following questions?"
	DeleteQuestionsAllVersionCheck = "Are you sure you want to delete all versions of the following questions?"
	QuestionsInUse                 = "* Denotes questions which can't be deleted because they are in use. Instead, they will be hidden in the question bank."
)

const createdByTimeFormat = "Monday, 2 January 2006, 3:04 PM"

type QuestionBankService struct {
	DB        *gorm.DB
	Questions *repository.QuestionRepository
	Attempts  *repository.AttemptRepository
	Users     *repository.UserRepository
	Gate      *authz.Gate
	Cache     StructureCache
	Events    *event.Bus
}

func NewQuestionBankService(db *gorm.DB, questions *repository.QuestionRepository, attempts *repository.AttemptRepository,
	users *repository.UserRepository, gate *authz.Gate, cache StructureCache, events *event.Bus) *QuestionBankService {
	if cache == nil {
		cache = NopStructureCache{}
	}
	return &QuestionBankService{DB: db, Questions: questions, Attempts: attempts, Users: users, Gate: gate, Cache: cache, Events: events}
}

type DeleteConfirmation struct {
	Message            string `json:"message"`
	InUse              bool   `json:"inuse"`
	HasMultipleVersion bool   `json:"hasmultipleversions"`
}

type DeleteQuestionsResult struct {
	Deleted []uint `json:"deleted"`
	Hidden  []uint `json:"hidden"`
}

type VersionInfo struct {
	EntryID       uint   `json:"entryid"`
	VersionNumber int    `json:"versionnumber"`
	VersionInfo   string `json:"versioninfo"`
	CreatedBy     string `json:"createdby,omitempty"`
}

// candidate 待删除的题目版本及其所在条目的全部版本
type candidate struct {
	question *model.Question
	versions []*model.Question
	courseID uint
	inUse    bool
}

// collect 加载题目，allVersions 时扩展到条目下全部版本，并逐个检查编辑权限
func (s *QuestionBankService) collect(ctx context.Context, ac authz.AuthorizationContext, ids []uint, allVersions bool) ([]*candidate, bool, error) {
	if len(ids) == 0 {
		return nil, false, fmt.Errorf("%w: no questions given", util.ErrValidation)
	}

	entries := make(map[uint][]*model.Question)
	selected := make(map[uint]*model.Question)
	for _, id := range ids {
		q, err := s.Questions.FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		selected[q.ID] = q
		if _, ok := entries[q.BankEntryID]; !ok {
			versions, err := s.Questions.Versions(ctx, q.BankEntryID)
			if err != nil {
				return nil, false, err
			}
			entries[q.BankEntryID] = versions
		}
	}

	multiple := false
	if allVersions {
		for _, versions := range entries {
			if len(versions) > 1 {
				multiple = true
			}
			for _, v := range versions {
				selected[v.ID] = v
			}
		}
	}

	courses := make(map[uint]uint)
	refs := make(map[uint][]*int)
	out := make([]*candidate, 0, len(selected))
	for _, q := range selected {
		courseID, ok := courses[q.BankEntryID]
		if !ok {
			var err error
			if courseID, err = s.Questions.CourseForEntry(ctx, q.BankEntryID); err != nil {
				return nil, false, err
			}
			courses[q.BankEntryID] = courseID
			if refs[q.BankEntryID], err = s.Questions.SlotReferences(ctx, q.BankEntryID); err != nil {
				return nil, false, err
			}
		}
		if err := s.Gate.RequireQuestionEdit(ctx, ac, courseID, q); err != nil {
			return nil, false, err
		}
		c := &candidate{question: q, versions: entries[q.BankEntryID], courseID: courseID}
		c.inUse = inUse(q, c.versions, refs[q.BankEntryID])
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].question, out[j].question
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, multiple, nil
}

// inUse 槽位固定引用该版本，或引用"最新版本"且该版本正是当前最新
func inUse(q *model.Question, versions []*model.Question, refs []*int) bool {
	for _, ref := range refs {
		if ref != nil && *ref == q.Version {
			return true
		}
		if ref == nil {
			if latest := pickVersion(versions, nil); latest != nil && latest.ID == q.ID {
				return true
			}
		}
	}
	return false
}

// DeleteConfirmation 生成删除确认提示，正在使用的题目以 "* " 标出
func (s *QuestionBankService) DeleteConfirmation(ctx context.Context, ac authz.AuthorizationContext, ids []uint, allVersions bool) (*DeleteConfirmation, error) {
	candidates, multiple, err := s.collect(ctx, ac, ids, allVersions)
	if err != nil {
		return nil, err
	}

	var names strings.Builder
	anyInUse := false
	for _, c := range candidates {
		if c.inUse {
			names.WriteString("* ")
			anyInUse = true
		}
		names.WriteString(c.question.Name)
		if allVersions {
			fmt.Fprintf(&names, " v%d", c.question.Version)
		}
		names.WriteString("\n")
	}
	if anyInUse {
		names.WriteString("\n" + QuestionsInUse)
	}

	heading := DeleteSelectedQuestionCheck
	if allVersions {
		heading = DeleteQuestionsCheck
		if multiple {
			heading = DeleteQuestionsAllVersionCheck
		}
	}
	return &DeleteConfirmation{
		Message:            heading + "\n" + names.String(),
		InUse:              anyInUse,
		HasMultipleVersion: multiple,
	}, nil
}

// Delete 正在使用的题目只隐藏；真正删除的题目在同一事务内发布 question.deleted，
// 订阅者失败时整体回滚。条目没有剩余版本时一并删除。
func (s *QuestionBankService) Delete(ctx context.Context, ac authz.AuthorizationContext, ids []uint, allVersions bool) (*DeleteQuestionsResult, error) {
	candidates, _, err := s.collect(ctx, ac, ids, allVersions)
	if err != nil {
		return nil, err
	}
	quizIDs, err := s.affectedQuizzes(ctx, candidates)
	if err != nil {
		return nil, err
	}

	result := &DeleteQuestionsResult{Deleted: []uint{}, Hidden: []uint{}}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := s.Questions.WithTx(tx)
		touched := make(map[uint]bool)
		var deleted []*candidate
		for _, c := range candidates {
			if c.inUse {
				if err := questions.Hide(ctx, c.question.ID); err != nil {
					return err
				}
				result.Hidden = append(result.Hidden, c.question.ID)
				continue
			}
			if err := questions.Delete(ctx, c.question.ID); err != nil {
				return err
			}
			touched[c.question.BankEntryID] = true
			result.Deleted = append(result.Deleted, c.question.ID)
			deleted = append(deleted, c)
		}
		for entryID := range touched {
			if _, err := questions.DeleteEntryIfEmpty(ctx, entryID); err != nil {
				return err
			}
		}

		if s.Events == nil {
			return nil
		}
		txCtx := repository.ContextWithTx(ctx, tx)
		for _, c := range deleted {
			err := s.Events.Publish(txCtx, event.Event{
				Name:     event.QuestionDeleted,
				ObjectID: c.question.ID,
				CourseID: c.courseID,
				UserID:   ac.UserID,
				Data:     map[string]interface{}{"categoryid": c.question.BankEntryID},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Error("删除题目失败", zap.Uint("user_id", ac.UserID), zap.Uints("ids", ids), zap.Error(err))
		return nil, err
	}

	for _, quizID := range quizIDs {
		s.Cache.Invalidate(ctx, quizID)
	}
	logger.Log.Info("题目已删除",
		zap.Uint("user_id", ac.UserID),
		zap.Uints("deleted", result.Deleted),
		zap.Uints("hidden", result.Hidden))
	return result, nil
}

// affectedQuizzes 引用这些题目或含有其作答的测验，编辑页缓存需要失效
func (s *QuestionBankService) affectedQuizzes(ctx context.Context, candidates []*candidate) ([]uint, error) {
	entryIDs := make([]uint, 0, len(candidates))
	questionIDs := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		entryIDs = append(entryIDs, c.question.BankEntryID)
		questionIDs = append(questionIDs, c.question.ID)
	}
	fromSlots, err := s.Questions.QuizIDsForEntries(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	fromAttempts, err := s.Attempts.QuizIDsForQuestions(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	out := make([]uint, 0, len(fromSlots)+len(fromAttempts))
	for _, id := range append(fromSlots, fromAttempts...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// VersionInfo 题目版本号与创建者信息
func (s *QuestionBankService) VersionInfo(ctx context.Context, ac authz.AuthorizationContext, questionID uint) (*VersionInfo, error) {
	q, err := s.Questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	courseID, err := s.Questions.CourseForEntry(ctx, q.BankEntryID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Require(ctx, ac, courseID, authz.QuestionViewAll); err != nil {
		return nil, err
	}
	versions, err := s.Questions.Versions(ctx, q.BankEntryID)
	if err != nil {
		return nil, err
	}

	info := &VersionInfo{
		EntryID:       q.BankEntryID,
		VersionNumber: q.Version,
		VersionInfo:   fmt.Sprintf("Version %d", q.Version),
	}
	if len(versions) > 0 && versions[len(versions)-1].ID == q.ID {
		info.VersionInfo += " (latest)"
	}
	if q.CreatedBy != 0 {
		creator, err := s.Users.FindByID(ctx, q.CreatedBy)
		if err != nil {
			return nil, err
		}
		info.CreatedBy = fmt.Sprintf("Created by %s on %s", creator.FullName(), q.CreatedAt.Format(createdByTimeFormat))
	}
	return info, nil
}
