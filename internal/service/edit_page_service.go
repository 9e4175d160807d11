package service

import (
	"context"
	"fmt"
	"lms_backend/internal/authz"
	"lms_backend/internal/repository"
	"strconv"
	"time"
)

// 未命名分节的默认标题
const SectionNoName = "Untitled section"

const maxQuestionsPerPageOption = 50

// EditPage 测验编辑页的全部展示数据
type EditPage struct {
	QuizID                 uint                   `json:"quizid"`
	QuizInformation        QuizInformation        `json:"quizinformation"`
	MaximumGradeInput      MaximumGradeInput      `json:"maximumgradeinput"`
	RepaginateButton       RepaginateButton       `json:"repaginatebutton"`
	TotalMarks             TotalMarks             `json:"totalmarks"`
	SelectMultipleControls SelectMultipleControls `json:"selectmultiplecontrols"`
	Sections               []SectionView          `json:"sections"`
	CanBeEdited            bool                   `json:"canbeedited"`
	QuestionDecimalPoints  int                    `json:"questiondecimalpoints"`
	Warnings               []string               `json:"warnings"`
}

type QuizInformation struct {
	CurrentStatus string `json:"currentstatus"`
	Explanation   string `json:"explanation"`
	QuestionCount int    `json:"questioncount"`
}

type MaximumGradeInput struct {
	Size  int    `json:"size"`
	Value string `json:"value"`
}

type PerPageOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type RepaginateButton struct {
	Enabled          bool            `json:"enabled"`
	PerPageOptions   []PerPageOption `json:"perpageoptions"`
	QuestionsPerPage int             `json:"questionsperpage"`
}

type TotalMarks struct {
	TotalMark string `json:"totalmark"`
}

type SelectMultipleControls struct {
	Enabled bool `json:"enabled"`
}

type SectionView struct {
	SectionID   uint       `json:"sectionid"`
	Heading     string     `json:"heading"`
	HeadingText string     `json:"headingtext"`
	Shuffled    bool       `json:"shuffled"`
	OnlyOneSlot bool       `json:"onlyoneslot"`
	Removable   bool       `json:"removable"`
	Editable    bool       `json:"editable"`
	LastSection bool       `json:"lastsection"`
	Slots       []SlotView `json:"slots"`
}

type SlotView struct {
	ID                 uint   `json:"id"`
	Slot               int    `json:"slot"`
	Page               int    `json:"page"`
	MaxMark            string `json:"maxmark"`
	RequirePrevious    bool   `json:"requireprevious"`
	CanRequirePrevious bool   `json:"canrequireprevious"`
	QuestionID         uint   `json:"questionid"`
	QuestionName       string `json:"questionname"`
	QType              string `json:"qtype"`
	Version            *int   `json:"version"`
}

type EditPageService struct {
	Structure *StructureService
	Attempts  *repository.AttemptRepository
	Cache     StructureCache
	// 便于测试固定时间
	Now func() time.Time
}

func NewEditPageService(structure *StructureService, attempts *repository.AttemptRepository, cache StructureCache) *EditPageService {
	if cache == nil {
		cache = NopStructureCache{}
	}
	return &EditPageService{Structure: structure, Attempts: attempts, Cache: cache, Now: time.Now}
}

// Get 需要 QuizManage，优先读缓存
func (s *EditPageService) Get(ctx context.Context, ac authz.AuthorizationContext, quizID uint) (*EditPage, error) {
	if _, err := s.Structure.authorize(ctx, ac, quizID); err != nil {
		return nil, err
	}
	if page, ok := s.Cache.GetEditPage(ctx, quizID); ok {
		return page, nil
	}

	st, err := s.Structure.LoadStructure(ctx, quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.CountQuizAttempts(ctx, quizID, false)
	if err != nil {
		return nil, err
	}
	page := BuildEditPage(st, attempts, s.Now())
	s.Cache.SetEditPage(ctx, quizID, page)
	return page, nil
}

// BuildEditPage 由结构生成编辑页，attempts 为正式作答次数
func BuildEditPage(st *Structure, attempts int64, now time.Time) *EditPage {
	status, explanation := st.DatesSummary(now)
	canEdit := st.CanBeEdited()

	page := &EditPage{
		QuizID: st.Quiz.ID,
		QuizInformation: QuizInformation{
			CurrentStatus: status,
			Explanation:   explanation,
			QuestionCount: st.QuestionCount(),
		},
		MaximumGradeInput: MaximumGradeInput{
			Size:  st.DecimalPlacesForGrades() + 2,
			Value: st.FormattedQuizGrade(),
		},
		RepaginateButton: RepaginateButton{
			Enabled:          st.CanBeRepaginated(),
			PerPageOptions:   perPageOptions(),
			QuestionsPerPage: st.Quiz.QuestionsPerPage,
		},
		TotalMarks:             TotalMarks{TotalMark: FormatQuizGrade(st.Quiz, st.Quiz.SumGrades)},
		SelectMultipleControls: SelectMultipleControls{Enabled: canEdit && len(st.Slots) > 0},
		CanBeEdited:            canEdit,
		QuestionDecimalPoints:  st.DecimalPlacesForQuestionMarks(),
		Warnings:               []string{},
	}

	if !canEdit {
		page.Warnings = append(page.Warnings,
			fmt.Sprintf("You cannot add or remove questions because this quiz has been attempted. (Attempts: %d)", attempts))
	}

	for _, sec := range st.Sections {
		view := SectionView{
			SectionID:   sec.ID,
			Heading:     sec.Heading,
			HeadingText: sec.Heading,
			Shuffled:    sec.ShuffleQuestions,
			OnlyOneSlot: st.IsOnlyOneSlotInSection(sec),
			Removable:   canEdit && !st.IsFirstSection(sec),
			Editable:    canEdit,
			LastSection: st.IsLastSection(sec),
			Slots:       []SlotView{},
		}
		if view.HeadingText == "" {
			view.HeadingText = SectionNoName
		}
		for _, slot := range st.SlotsInSection(sec.ID) {
			sv := SlotView{
				ID:                 slot.ID,
				Slot:               slot.Slot,
				Page:               slot.Page,
				MaxMark:            FormatQuestionMark(st.Quiz, slot.MaxMark),
				RequirePrevious:    slot.RequirePrevious,
				CanRequirePrevious: canEdit && slot.Slot > 1,
				Version:            slot.Version,
			}
			if q := st.Question(slot.ID); q != nil {
				sv.QuestionID = q.ID
				sv.QuestionName = q.Name
				sv.QType = q.QType
			}
			view.Slots = append(view.Slots, sv)
		}
		page.Sections = append(page.Sections, view)
	}
	return page
}

func perPageOptions() []PerPageOption {
	opts := []PerPageOption{{Value: 0, Label: "Unlimited"}}
	for i := 1; i <= maxQuestionsPerPageOption; i++ {
		opts = append(opts, PerPageOption{Value: i, Label: strconv.Itoa(i)})
	}
	return opts
}
