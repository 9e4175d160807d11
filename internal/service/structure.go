package service

import (
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"sort"
	"time"
)

// 分页操作类型
const (
	PageBreakJoin  = 1
	PageBreakSplit = 2
)

// Structure 一个测验的槽位与分节，所有修改先在内存中完成，再由 StructureService 持久化
type Structure struct {
	Quiz     *model.Quiz
	Slots    []*model.QuizSlot
	Sections []*model.QuizSection

	// slot id -> 槽位实际使用的题目版本
	questions map[uint]*model.Question
	attempted bool
}

func NewStructure(quiz *model.Quiz, slots []*model.QuizSlot, sections []*model.QuizSection,
	questions map[uint]*model.Question, attempted bool) *Structure {
	if questions == nil {
		questions = make(map[uint]*model.Question)
	}
	st := &Structure{
		Quiz:      quiz,
		Slots:     slots,
		Sections:  sections,
		questions: questions,
		attempted: attempted,
	}
	st.sort()
	return st
}

func (s *Structure) sort() {
	sort.SliceStable(s.Slots, func(i, j int) bool { return s.Slots[i].Slot < s.Slots[j].Slot })
	sort.SliceStable(s.Sections, func(i, j int) bool { return s.Sections[i].FirstSlot < s.Sections[j].FirstSlot })
}

func (s *Structure) SlotByID(id uint) (*model.QuizSlot, error) {
	for _, slot := range s.Slots {
		if slot.ID == id {
			return slot, nil
		}
	}
	return nil, fmt.Errorf("slot %d in quiz %d: %w", id, s.Quiz.ID, util.ErrNotFound)
}

func (s *Structure) SlotByNumber(n int) *model.QuizSlot {
	if n < 1 || n > len(s.Slots) {
		return nil
	}
	return s.Slots[n-1]
}

func (s *Structure) SectionByID(id uint) (*model.QuizSection, error) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, nil
		}
	}
	return nil, fmt.Errorf("section %d in quiz %d: %w", id, s.Quiz.ID, util.ErrNotFound)
}

func (s *Structure) PageForSlot(n int) int {
	if slot := s.SlotByNumber(n); slot != nil {
		return slot.Page
	}
	return 0
}

// SectionForSlot 首槽位不大于 n 的最后一节
func (s *Structure) SectionForSlot(n int) *model.QuizSection {
	var found *model.QuizSection
	for _, sec := range s.Sections {
		if sec.FirstSlot <= n {
			found = sec
		}
	}
	return found
}

func (s *Structure) sectionEnd(sec *model.QuizSection) int {
	for _, other := range s.Sections {
		if other.FirstSlot > sec.FirstSlot {
			return other.FirstSlot - 1
		}
	}
	return len(s.Slots)
}

func (s *Structure) SlotsInSection(sectionID uint) []*model.QuizSlot {
	sec, err := s.SectionByID(sectionID)
	if err != nil {
		return nil
	}
	var out []*model.QuizSlot
	for n := sec.FirstSlot; n <= s.sectionEnd(sec); n++ {
		if slot := s.SlotByNumber(n); slot != nil {
			out = append(out, slot)
		}
	}
	return out
}

func (s *Structure) IsOnlySlotInSection(n int) bool {
	sec := s.SectionForSlot(n)
	if sec == nil {
		return false
	}
	return sec.FirstSlot == n && s.sectionEnd(sec) == n
}

func (s *Structure) IsOnlyOneSlotInSection(sec *model.QuizSection) bool {
	return s.sectionEnd(sec)-sec.FirstSlot == 0
}

func (s *Structure) IsFirstSection(sec *model.QuizSection) bool {
	return sec.FirstSlot == 1
}

func (s *Structure) IsLastSection(sec *model.QuizSection) bool {
	return len(s.Sections) > 0 && s.Sections[len(s.Sections)-1].ID == sec.ID
}

func (s *Structure) IsSectionStart(n int) bool {
	for _, sec := range s.Sections {
		if sec.FirstSlot == n {
			return true
		}
	}
	return false
}

func (s *Structure) IsFirstSlotOnPage(n int) bool {
	return n == 1 || s.PageForSlot(n-1) != s.PageForSlot(n)
}

func (s *Structure) IsLastSlotInQuiz(n int) bool {
	return n == len(s.Slots)
}

// Question 槽位对应的题目，题目已被删除时为 nil
func (s *Structure) Question(slotID uint) *model.Question {
	return s.questions[slotID]
}

// QuestionCount 说明性题目不计数
func (s *Structure) QuestionCount() int {
	count := 0
	for _, slot := range s.Slots {
		if q := s.questions[slot.ID]; q != nil && q.QType == model.QTypeDescription {
			continue
		}
		count++
	}
	return count
}

func (s *Structure) CanBeEdited() bool {
	return !s.attempted
}

func (s *Structure) CheckCanBeEdited() error {
	if !s.CanBeEdited() {
		return fmt.Errorf("quiz %d: %w", s.Quiz.ID, util.ErrEditForbidden)
	}
	return nil
}

func (s *Structure) CanBeRepaginated() bool {
	return s.CanBeEdited() && s.QuestionCount() >= 2
}

func (s *Structure) DecimalPlacesForGrades() int {
	return s.Quiz.DecimalPoints
}

func (s *Structure) DecimalPlacesForQuestionMarks() int {
	if s.Quiz.QuestionDecimalPoints == -1 {
		return s.Quiz.DecimalPoints
	}
	return s.Quiz.QuestionDecimalPoints
}

func (s *Structure) FormattedQuizGrade() string {
	return util.FormatGrade(s.Quiz.Grade, s.DecimalPlacesForGrades())
}

// DatesSummary 简短状态与完整的开放/关闭说明
func (s *Structure) DatesSummary(now time.Time) (string, string) {
	q := s.Quiz
	var dates []string
	if q.TimeOpen != nil {
		if now.After(*q.TimeOpen) {
			dates = append(dates, "Opened: "+q.TimeOpen.Format(util.TimeFormat))
		} else {
			dates = append(dates, "Opens: "+q.TimeOpen.Format(util.TimeFormat))
		}
	}
	if q.TimeClose != nil {
		if now.After(*q.TimeClose) {
			dates = append(dates, "Closed: "+q.TimeClose.Format(util.TimeFormat))
		} else {
			dates = append(dates, "Closes: "+q.TimeClose.Format(util.TimeFormat))
		}
	}
	explanation := "No dates set"
	if len(dates) > 0 {
		explanation = dates[0]
		for _, d := range dates[1:] {
			explanation += ", " + d
		}
	}

	var status string
	switch {
	case q.TimeOpen != nil && now.Before(*q.TimeOpen):
		status = fmt.Sprintf("Closed (opens %s)", q.TimeOpen.Format(util.TimeFormat))
	case q.TimeClose != nil && !now.After(*q.TimeClose):
		status = fmt.Sprintf("Open (closes %s)", q.TimeClose.Format(util.TimeFormat))
	case q.TimeClose != nil:
		status = "Closed"
	default:
		status = "Open"
	}
	return status, explanation
}

// refreshPageNumbers 页码按槽位顺序压缩为 1..n
func (s *Structure) refreshPageNumbers() {
	newPage, oldPage := 0, -1
	for _, slot := range s.Slots {
		if slot.Page != oldPage {
			oldPage = slot.Page
			newPage++
		}
		slot.Page = newPage
	}
}

// clearFirstDependency 第一个槽位之前没有题目可依赖
func (s *Structure) clearFirstDependency() {
	if len(s.Slots) > 0 {
		s.Slots[0].RequirePrevious = false
	}
}

// moveSlot 把槽位移到 afterID 之后（0 表示最前）的指定页。没有任何变化时返回 false。
func (s *Structure) moveSlot(id, afterID uint, page int) (bool, error) {
	moving, err := s.SlotByID(id)
	if err != nil {
		return false, err
	}
	after := 0
	if afterID != 0 {
		a, err := s.SlotByID(afterID)
		if err != nil {
			return false, err
		}
		after = a.Slot
	}
	if page == 0 {
		page = 1
	}
	movingNo := moving.Slot

	if page < 1 || (after > 0 && page < s.PageForSlot(after)) {
		return false, fmt.Errorf("%w: the target page number is too small", util.ErrValidation)
	}
	// 移动后紧跟其后的槽位，不算被移动的槽位本身
	following := after + 1
	if following == movingNo {
		following++
	}
	if following <= len(s.Slots) && page > s.PageForSlot(following) {
		return false, fmt.Errorf("%w: the target page number is too large", util.ErrValidation)
	}

	reorder := make(map[int]int)
	var headingAfter, headingBefore, direction int
	switch {
	case after > movingNo:
		// 向下移动
		reorder[movingNo] = after
		for i := movingNo; i < after; i++ {
			reorder[i+1] = i
		}
		headingAfter = movingNo
		// 落到下一节开头的那一页时，该节标题一起上移
		if s.IsLastSlotInQuiz(after) || page == s.PageForSlot(after+1) {
			headingBefore = after + 2
		} else {
			headingBefore = after + 1
		}
		direction = -1
	case after < movingNo-1:
		// 向上移动
		reorder[movingNo] = after + 1
		for i := after + 1; i < movingNo; i++ {
			reorder[i] = i + 1
		}
		if page == s.PageForSlot(after+1) {
			headingAfter = after + 1
		} else {
			headingAfter = after
		}
		headingBefore = movingNo + 1
		direction = 1
	default:
		// 位置不变，只可能换页或换节
		switch {
		case page > moving.Page:
			headingAfter, headingBefore, direction = movingNo, movingNo+2, -1
		case page < moving.Page:
			headingAfter, headingBefore, direction = movingNo-1, movingNo+1, 1
		default:
			return false, nil
		}
	}

	if s.IsOnlySlotInSection(movingNo) {
		return false, fmt.Errorf("%w: cannot move the only slot in a section", util.ErrInvalidState)
	}

	byNumber := make(map[int]*model.QuizSlot, len(s.Slots))
	for _, slot := range s.Slots {
		byNumber[slot.Slot] = slot
	}
	for from, to := range reorder {
		byNumber[from].Slot = to
	}
	moving.Page = page

	for _, sec := range s.Sections {
		if sec.FirstSlot > 1 && sec.FirstSlot > headingAfter && sec.FirstSlot < headingBefore {
			sec.FirstSlot += direction
		}
	}

	s.sort()
	s.refreshPageNumbers()
	s.clearFirstDependency()
	return true, nil
}

// removeSlot 删除编号为 n 的槽位，后续槽位与分节首槽位前移
func (s *Structure) removeSlot(n int) (*model.QuizSlot, error) {
	slot := s.SlotByNumber(n)
	if slot == nil {
		return nil, fmt.Errorf("slot number %d in quiz %d: %w", n, s.Quiz.ID, util.ErrNotFound)
	}
	if len(s.Sections) > 1 && s.IsOnlySlotInSection(n) {
		return nil, fmt.Errorf("%w: cannot remove the last slot in a section", util.ErrInvalidState)
	}

	s.Slots = append(s.Slots[:n-1:n-1], s.Slots[n:]...)
	for _, other := range s.Slots {
		if other.Slot > n {
			other.Slot--
		}
	}
	for _, sec := range s.Sections {
		if sec.FirstSlot > n {
			sec.FirstSlot--
		}
	}
	delete(s.questions, slot.ID)

	s.refreshPageNumbers()
	s.clearFirstDependency()
	return slot, nil
}

// updatePageBreak 合并（槽位并入上一页）或拆分（槽位起新页），其后所有槽位随之移动
func (s *Structure) updatePageBreak(id uint, value int) error {
	slot, err := s.SlotByID(id)
	if err != nil {
		return err
	}

	delta := 0
	switch value {
	case PageBreakJoin:
		if slot.Slot == 1 || !s.IsFirstSlotOnPage(slot.Slot) {
			return fmt.Errorf("%w: slot %d does not start a page", util.ErrInvalidState, slot.Slot)
		}
		if s.IsSectionStart(slot.Slot) {
			return fmt.Errorf("%w: slot %d starts a section", util.ErrInvalidState, slot.Slot)
		}
		delta = -1
	case PageBreakSplit:
		if s.IsFirstSlotOnPage(slot.Slot) {
			return fmt.Errorf("%w: slot %d already starts a page", util.ErrInvalidState, slot.Slot)
		}
		delta = 1
	default:
		return fmt.Errorf("%w: unknown page break type %d", util.ErrValidation, value)
	}

	for _, other := range s.Slots {
		if other.Slot >= slot.Slot {
			other.Page += delta
		}
	}
	s.refreshPageNumbers()
	return nil
}

// repaginate 每节从新页开始，perPage 为 0 表示每节一页
func (s *Structure) repaginate(perPage int) error {
	if perPage < 0 {
		return fmt.Errorf("%w: questions per page must not be negative", util.ErrValidation)
	}
	if !s.CanBeRepaginated() {
		return fmt.Errorf("%w: quiz %d cannot be repaginated", util.ErrInvalidState, s.Quiz.ID)
	}

	current, onPage := 1, 0
	for _, slot := range s.Slots {
		if onPage > 0 && s.IsSectionStart(slot.Slot) {
			current++
			onPage = 0
		}
		if onPage > 0 && onPage == perPage {
			current++
			onPage = 0
		}
		slot.Page = current
		onPage++
	}
	s.Quiz.QuestionsPerPage = perPage
	return nil
}

// addSection 在某页的第一个槽位处开始新的一节
func (s *Structure) addSection(page int, heading string) (*model.QuizSection, error) {
	first := 0
	for _, slot := range s.Slots {
		if slot.Page == page {
			first = slot.Slot
			break
		}
	}
	if first == 0 {
		return nil, fmt.Errorf("page %d in quiz %d: %w", page, s.Quiz.ID, util.ErrNotFound)
	}
	if s.IsSectionStart(first) {
		return nil, fmt.Errorf("%w: a section already starts on page %d", util.ErrInvalidState, page)
	}

	sec := &model.QuizSection{QuizID: s.Quiz.ID, FirstSlot: first, Heading: heading}
	s.Sections = append(s.Sections, sec)
	s.sort()
	return sec, nil
}

// removeSection 第一节不能删除，其槽位并入上一节
func (s *Structure) removeSection(id uint) (*model.QuizSection, error) {
	sec, err := s.SectionByID(id)
	if err != nil {
		return nil, err
	}
	if s.IsFirstSection(sec) {
		return nil, fmt.Errorf("%w: cannot remove the first section in a quiz", util.ErrInvalidState)
	}
	for i, other := range s.Sections {
		if other.ID == id {
			s.Sections = append(s.Sections[:i:i], s.Sections[i+1:]...)
			break
		}
	}
	return sec, nil
}

func (s *Structure) setDependency(id uint, requires bool) (*model.QuizSlot, error) {
	slot, err := s.SlotByID(id)
	if err != nil {
		return nil, err
	}
	if requires && slot.Slot == 1 {
		return nil, fmt.Errorf("%w: the first slot cannot depend on a previous one", util.ErrValidation)
	}
	slot.RequirePrevious = requires
	return slot, nil
}
