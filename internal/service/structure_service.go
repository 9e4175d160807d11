package service

import (
	"context"
	"errors"
	"fmt"
	"lms_backend/internal/authz"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StructureService struct {
	DB        *gorm.DB
	Quizzes   *repository.QuizRepository
	Questions *repository.QuestionRepository
	Attempts  *repository.AttemptRepository
	Gate      *authz.Gate
	Grades    *GradeCalculator
	Cache     StructureCache
	Events    *event.Bus
}

func NewStructureService(db *gorm.DB, quizzes *repository.QuizRepository, questions *repository.QuestionRepository,
	attempts *repository.AttemptRepository, gate *authz.Gate, grades *GradeCalculator,
	cache StructureCache, events *event.Bus) *StructureService {
	if cache == nil {
		cache = NopStructureCache{}
	}
	return &StructureService{
		DB:        db,
		Quizzes:   quizzes,
		Questions: questions,
		Attempts:  attempts,
		Gate:      gate,
		Grades:    grades,
		Cache:     cache,
		Events:    events,
	}
}

type MoveSlotResult struct {
	Visible bool `json:"visible"`
}

type DeleteSlotsResult struct {
	NewSumMarks     string `json:"newsummarks"`
	Deleted         bool   `json:"deleted"`
	NewNumQuestions int    `json:"newnumquestions"`
}

type SlotPage struct {
	ID   uint `json:"id"`
	Slot int  `json:"slot"`
	Page int  `json:"page"`
}

type SlotsResult struct {
	Slots map[int]SlotPage `json:"slots"`
}

type DependencyResult struct {
	RequirePrevious bool `json:"requireprevious"`
}

type SectionTitleResult struct {
	InstanceSection string `json:"instancesection"`
}

type SectionShuffleResult struct {
	InstanceShuffle int `json:"instanceshuffle"`
}

type DeleteSectionResult struct {
	Deleted bool `json:"deleted"`
}

type AddSectionResult struct {
	ID        uint   `json:"id"`
	FirstSlot int    `json:"firstslot"`
	Heading   string `json:"heading"`
}

type MaxMarkResult struct {
	InstanceMaxMark string `json:"instancemaxmark"`
	NewSumMarks     string `json:"newsummarks,omitempty"`
}

type MaximumGradeResult struct {
	Grade string `json:"grade"`
}

// mutation 控制一次结构修改的公共步骤
type mutation struct {
	op             string
	editCheck      bool
	deletePreviews bool
	recomputeGrade bool
}

// LoadStructure 读取测验当前结构
func (s *StructureService) LoadStructure(ctx context.Context, quizID uint) (*Structure, error) {
	return s.loadStructure(ctx, s.DB, quizID)
}

func (s *StructureService) loadStructure(ctx context.Context, db *gorm.DB, quizID uint) (*Structure, error) {
	quizzes := s.Quizzes.WithTx(db)
	quiz, err := quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	slots, err := quizzes.Slots(ctx, quizID)
	if err != nil {
		return nil, err
	}
	sections, err := quizzes.Sections(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.resolveQuestions(ctx, db, slots)
	if err != nil {
		return nil, err
	}
	attempted, err := s.Attempts.WithTx(db).HasNonPreviewAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return NewStructure(quiz, slots, sections, questions, attempted), nil
}

// resolveQuestions 槽位指定版本时用该版本，否则用最新的就绪版本，没有就绪版本时用最大版本
func (s *StructureService) resolveQuestions(ctx context.Context, db *gorm.DB, slots []*model.QuizSlot) (map[uint]*model.Question, error) {
	entryIDs := make([]uint, 0, len(slots))
	for _, slot := range slots {
		entryIDs = append(entryIDs, slot.QuestionBankEntryID)
	}
	versions, err := s.Questions.WithTx(db).VersionsForEntries(ctx, entryIDs)
	if err != nil {
		return nil, err
	}
	byEntry := make(map[uint][]*model.Question)
	for _, q := range versions {
		byEntry[q.BankEntryID] = append(byEntry[q.BankEntryID], q)
	}

	out := make(map[uint]*model.Question, len(slots))
	for _, slot := range slots {
		if q := pickVersion(byEntry[slot.QuestionBankEntryID], slot.Version); q != nil {
			out[slot.ID] = q
		}
	}
	return out, nil
}

// pickVersion versions 按版本号升序
func pickVersion(versions []*model.Question, want *int) *model.Question {
	if len(versions) == 0 {
		return nil
	}
	if want != nil {
		for _, q := range versions {
			if q.Version == *want {
				return q
			}
		}
		return nil
	}
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Status == model.QuestionReady {
			return versions[i]
		}
	}
	return versions[len(versions)-1]
}

func (s *StructureService) authorize(ctx context.Context, ac authz.AuthorizationContext, quizID uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Require(ctx, ac, quiz.CourseID, authz.QuizManage); err != nil {
		return nil, err
	}
	return quiz, nil
}

// apply 在一个事务中加载结构、执行修改并完成删除预览、重算总分；事务提交后清缓存
func (s *StructureService) apply(ctx context.Context, ac authz.AuthorizationContext, quizID uint, m mutation,
	fn func(tx *gorm.DB, st *Structure) error) (*Structure, error) {
	var st *Structure
	previews := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		st, err = s.loadStructure(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if m.editCheck {
			if err := st.CheckCanBeEdited(); err != nil {
				return err
			}
		}
		if err := fn(tx, st); err != nil {
			return err
		}
		if m.deletePreviews {
			if previews, err = s.Attempts.WithTx(tx).DeletePreviews(ctx, quizID); err != nil {
				return err
			}
		}
		if m.recomputeGrade {
			return s.Grades.RecomputeSumGrades(ctx, tx, st.Quiz)
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if isRejection(err) {
			outcome = "rejected"
		}
		monitoring.StructureMutations.WithLabelValues(m.op, outcome).Inc()
		return nil, err
	}

	monitoring.StructureMutations.WithLabelValues(m.op, "ok").Inc()
	s.Cache.Invalidate(ctx, quizID)
	logger.Log.Info("测验结构已更新",
		zap.String("op", m.op),
		zap.Uint("quiz_id", quizID),
		zap.Uint("user_id", ac.UserID),
		zap.Int("previews_deleted", previews))

	if previews > 0 {
		s.publish(ctx, event.Event{
			Name:     event.QuizPreviewsDeleted,
			ObjectID: quizID,
			CourseID: st.Quiz.CourseID,
			UserID:   ac.UserID,
			Data:     map[string]interface{}{"count": previews},
		})
	}
	return st, nil
}

func isRejection(err error) bool {
	for _, kind := range []error{util.ErrNotFound, util.ErrEditForbidden, util.ErrInvalidState, util.ErrValidation} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// publish 提交后通知订阅者，订阅者失败不回滚已提交的修改
func (s *StructureService) publish(ctx context.Context, e event.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, e); err != nil {
		logger.Log.Error("事件处理失败", zap.String("event", e.Name), zap.Uint("object_id", e.ObjectID), zap.Error(err))
	}
}

func slotPages(st *Structure) map[int]SlotPage {
	out := make(map[int]SlotPage, len(st.Slots))
	for _, slot := range st.Slots {
		out[slot.Slot] = SlotPage{ID: slot.ID, Slot: slot.Slot, Page: slot.Page}
	}
	return out
}

// MoveSlot previousID 为 0 时移到 sectionID 所指分节的开头
func (s *StructureService) MoveSlot(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID, previousID, sectionID uint, page int) (*MoveSlotResult, error) {
	quiz, err := s.authorize(ctx, ac, quizID)
	if err != nil {
		return nil, err
	}

	m := mutation{op: "move_slot", editCheck: true, deletePreviews: true}
	_, err = s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		after := previousID
		if after == 0 && sectionID != 0 {
			sec, err := st.SectionByID(sectionID)
			if err != nil {
				return err
			}
			if sec.FirstSlot > 1 {
				after = st.SlotByNumber(sec.FirstSlot - 1).ID
				page = st.PageForSlot(sec.FirstSlot)
			}
		}
		moved, err := st.moveSlot(slotID, after, page)
		if err != nil || !moved {
			return err
		}
		return s.Quizzes.WithTx(tx).SaveLayout(ctx, quizID, st.Slots, st.Sections)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.Event{
		Name:     event.QuizSlotMoved,
		ObjectID: slotID,
		CourseID: quiz.CourseID,
		UserID:   ac.UserID,
		Data:     map[string]interface{}{"quizid": quizID, "previousslotid": previousID, "page": page},
	})
	return &MoveSlotResult{Visible: true}, nil
}

func (s *StructureService) DeleteSlot(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID uint) (*DeleteSlotsResult, error) {
	return s.DeleteSlots(ctx, ac, quizID, []uint{slotID})
}

// DeleteSlots 先校验全部槽位存在且可使用其题目，再按槽位号从大到小删除
func (s *StructureService) DeleteSlots(ctx context.Context, ac authz.AuthorizationContext, quizID uint, slotIDs []uint) (*DeleteSlotsResult, error) {
	quiz, err := s.authorize(ctx, ac, quizID)
	if err != nil {
		return nil, err
	}
	if len(slotIDs) == 0 {
		return nil, fmt.Errorf("%w: no slots given", util.ErrValidation)
	}

	current, err := s.LoadStructure(ctx, quizID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(slotIDs))
	var ids []uint
	for _, id := range slotIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		slot, err := current.SlotByID(id)
		if err != nil {
			return nil, err
		}
		if q := current.Question(slot.ID); q != nil {
			courseID, err := s.Questions.CourseForEntry(ctx, q.BankEntryID)
			if err != nil {
				return nil, err
			}
			if err := s.Gate.RequireQuestionUse(ctx, ac, courseID, q); err != nil {
				return nil, err
			}
		}
		ids = append(ids, id)
	}

	m := mutation{op: "delete_slots", editCheck: true, deletePreviews: true, recomputeGrade: true}
	st, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		numbers := make([]int, 0, len(ids))
		for _, id := range ids {
			slot, err := st.SlotByID(id)
			if err != nil {
				return err
			}
			numbers = append(numbers, slot.Slot)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(numbers)))

		quizzes := s.Quizzes.WithTx(tx)
		for _, n := range numbers {
			removed, err := st.removeSlot(n)
			if err != nil {
				return err
			}
			if err := quizzes.DeleteSlot(ctx, removed.ID); err != nil {
				return err
			}
		}
		return quizzes.SaveLayout(ctx, quizID, st.Slots, st.Sections)
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		s.publish(ctx, event.Event{
			Name:     event.QuizSlotDeleted,
			ObjectID: id,
			CourseID: quiz.CourseID,
			UserID:   ac.UserID,
			Data:     map[string]interface{}{"quizid": quizID},
		})
	}
	return &DeleteSlotsResult{
		NewSumMarks:     FormatQuizGrade(st.Quiz, st.Quiz.SumGrades),
		Deleted:         true,
		NewNumQuestions: st.QuestionCount(),
	}, nil
}

func (s *StructureService) DeleteSection(ctx context.Context, ac authz.AuthorizationContext, quizID, sectionID uint) (*DeleteSectionResult, error) {
	quiz, err := s.authorize(ctx, ac, quizID)
	if err != nil {
		return nil, err
	}

	m := mutation{op: "delete_section", editCheck: true, deletePreviews: true}
	_, err = s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		sec, err := st.removeSection(sectionID)
		if err != nil {
			return err
		}
		return s.Quizzes.WithTx(tx).DeleteSection(ctx, sec.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.Event{
		Name:     event.QuizSectionDeleted,
		ObjectID: sectionID,
		CourseID: quiz.CourseID,
		UserID:   ac.UserID,
		Data:     map[string]interface{}{"quizid": quizID},
	})
	return &DeleteSectionResult{Deleted: true}, nil
}

// UpdatePageBreak value 为 PageBreakJoin 或 PageBreakSplit
func (s *StructureService) UpdatePageBreak(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID uint, value int) (*SlotsResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}

	m := mutation{op: "update_page_break", editCheck: true, deletePreviews: true}
	st, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		if err := st.updatePageBreak(slotID, value); err != nil {
			return err
		}
		return s.Quizzes.WithTx(tx).UpdateSlotPages(ctx, st.Slots)
	})
	if err != nil {
		return nil, err
	}
	return &SlotsResult{Slots: slotPages(st)}, nil
}

func (s *StructureService) UpdateDependency(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID uint, requires bool) (*DependencyResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}

	var result DependencyResult
	m := mutation{op: "update_dependency", editCheck: true, deletePreviews: true}
	_, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		slot, err := st.setDependency(slotID, requires)
		if err != nil {
			return err
		}
		result.RequirePrevious = slot.RequirePrevious
		return s.Quizzes.WithTx(tx).UpdateSlot(ctx, slot.ID, map[string]interface{}{"require_previous": slot.RequirePrevious})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RenameSection 标题去除首尾空白，允许为空
func (s *StructureService) RenameSection(ctx context.Context, ac authz.AuthorizationContext, quizID, sectionID uint, heading string) (*SectionTitleResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	heading = strings.TrimSpace(heading)

	m := mutation{op: "rename_section"}
	_, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		sec, err := st.SectionByID(sectionID)
		if err != nil {
			return err
		}
		sec.Heading = heading
		return s.Quizzes.WithTx(tx).UpdateSection(ctx, sec.ID, map[string]interface{}{"heading": heading})
	})
	if err != nil {
		return nil, err
	}
	return &SectionTitleResult{InstanceSection: heading}, nil
}

func (s *StructureService) GetSectionTitle(ctx context.Context, ac authz.AuthorizationContext, quizID, sectionID uint) (*SectionTitleResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	st, err := s.LoadStructure(ctx, quizID)
	if err != nil {
		return nil, err
	}
	sec, err := st.SectionByID(sectionID)
	if err != nil {
		return nil, err
	}
	return &SectionTitleResult{InstanceSection: sec.Heading}, nil
}

func (s *StructureService) SetSectionShuffle(ctx context.Context, ac authz.AuthorizationContext, quizID, sectionID uint, shuffle bool) (*SectionShuffleResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}

	var result SectionShuffleResult
	m := mutation{op: "set_section_shuffle", editCheck: true}
	_, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		sec, err := st.SectionByID(sectionID)
		if err != nil {
			return err
		}
		sec.ShuffleQuestions = shuffle
		if shuffle {
			result.InstanceShuffle = 1
		}
		return s.Quizzes.WithTx(tx).UpdateSection(ctx, sec.ID, map[string]interface{}{"shuffle_questions": shuffle})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddSectionHeading 在指定页的第一个槽位处开始新节
func (s *StructureService) AddSectionHeading(ctx context.Context, ac authz.AuthorizationContext, quizID uint, page int, heading string) (*AddSectionResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	heading = strings.TrimSpace(heading)

	var sec *model.QuizSection
	m := mutation{op: "add_section_heading", editCheck: true, deletePreviews: true}
	_, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		var err error
		if sec, err = st.addSection(page, heading); err != nil {
			return err
		}
		return s.Quizzes.WithTx(tx).CreateSection(ctx, sec)
	})
	if err != nil {
		return nil, err
	}
	return &AddSectionResult{ID: sec.ID, FirstSlot: sec.FirstSlot, Heading: sec.Heading}, nil
}

func (s *StructureService) GetMaxMark(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID uint) (*MaxMarkResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	st, err := s.LoadStructure(ctx, quizID)
	if err != nil {
		return nil, err
	}
	slot, err := st.SlotByID(slotID)
	if err != nil {
		return nil, err
	}
	return &MaxMarkResult{InstanceMaxMark: FormatQuestionMark(st.Quiz, slot.MaxMark)}, nil
}

// UpdateMaxMark 已有作答时同步修改作答中该题的满分
func (s *StructureService) UpdateMaxMark(ctx context.Context, ac authz.AuthorizationContext, quizID, slotID uint, mark decimal.Decimal) (*MaxMarkResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	if mark.IsNegative() {
		return nil, fmt.Errorf("%w: maximum mark must not be negative", util.ErrValidation)
	}

	var slot *model.QuizSlot
	m := mutation{op: "update_max_mark", deletePreviews: true, recomputeGrade: true}
	st, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		var err error
		if slot, err = st.SlotByID(slotID); err != nil {
			return err
		}
		if slot.MaxMark.Equal(mark) {
			return nil
		}
		slot.MaxMark = mark
		if err := s.Quizzes.WithTx(tx).UpdateSlotMaxMark(ctx, slot.ID, mark); err != nil {
			return err
		}
		return s.Attempts.WithTx(tx).SetMaxMarkInAttempts(ctx, quizID, slot.Slot, mark)
	})
	if err != nil {
		return nil, err
	}
	return &MaxMarkResult{
		InstanceMaxMark: FormatQuestionMark(st.Quiz, slot.MaxMark),
		NewSumMarks:     FormatQuizGrade(st.Quiz, st.Quiz.SumGrades),
	}, nil
}

// Repaginate perPage 为 0 时每节只有一页
func (s *StructureService) Repaginate(ctx context.Context, ac authz.AuthorizationContext, quizID uint, perPage int) (*SlotsResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}

	m := mutation{op: "repaginate", editCheck: true, deletePreviews: true}
	st, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		if err := st.repaginate(perPage); err != nil {
			return err
		}
		quizzes := s.Quizzes.WithTx(tx)
		if err := quizzes.UpdateSlotPages(ctx, st.Slots); err != nil {
			return err
		}
		return quizzes.UpdateFields(ctx, quizID, map[string]interface{}{"questions_per_page": perPage})
	})
	if err != nil {
		return nil, err
	}
	return &SlotsResult{Slots: slotPages(st)}, nil
}

// UpdateMaximumGrade 按测验精度四舍五入后保存
func (s *StructureService) UpdateMaximumGrade(ctx context.Context, ac authz.AuthorizationContext, quizID uint, grade decimal.Decimal) (*MaximumGradeResult, error) {
	if _, err := s.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	if grade.IsNegative() {
		return nil, fmt.Errorf("%w: maximum grade must not be negative", util.ErrValidation)
	}

	m := mutation{op: "update_maximum_grade"}
	st, err := s.apply(ctx, ac, quizID, m, func(tx *gorm.DB, st *Structure) error {
		st.Quiz.Grade = util.RoundGrade(grade, st.Quiz.DecimalPoints)
		return s.Quizzes.WithTx(tx).UpdateFields(ctx, quizID, map[string]interface{}{"grade": st.Quiz.Grade})
	})
	if err != nil {
		return nil, err
	}
	return &MaximumGradeResult{Grade: st.FormattedQuizGrade()}, nil
}
