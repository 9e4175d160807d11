package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseid"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Intro    string `gorm:"type:text" json:"intro"`
	// SumGrades 所有槽位最高分之和
	SumGrades decimal.Decimal `gorm:"type:decimal(10,5);not null" json:"sumgrades"`
	// Grade 测验换算后的满分
	Grade                 decimal.Decimal `gorm:"type:decimal(10,5);not null" json:"grade"`
	DecimalPoints         int             `gorm:"not null" json:"decimalpoints"`
	QuestionDecimalPoints int             `gorm:"not null" json:"questiondecimalpoints"`
	QuestionsPerPage      int             `gorm:"not null" json:"questionsperpage"`
	TimeLimit             int             `gorm:"not null" json:"timelimit"`
	TimeOpen              *time.Time      `json:"timeopen"`
	TimeClose             *time.Time      `json:"timeclose"`
}

// NewQuiz 带默认展示精度的新测验
func NewQuiz(courseID uint, name string) *Quiz {
	return &Quiz{
		CourseID:              courseID,
		Name:                  name,
		Grade:                 decimal.NewFromInt(10),
		DecimalPoints:         2,
		QuestionDecimalPoints: -1,
		QuestionsPerPage:      1,
	}
}

// QuizSection 测验分节，从 FirstSlot 开始直到下一节的首个槽位
type QuizSection struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID           uint   `gorm:"not null;uniqueIndex:idx_quiz_section_first_slot,priority:1" json:"quizid"`
	FirstSlot        int    `gorm:"not null;uniqueIndex:idx_quiz_section_first_slot,priority:2" json:"firstslot"`
	Heading          string `gorm:"size:1333" json:"heading"`
	ShuffleQuestions bool   `json:"shufflequestions"`
}

// QuizSlot 测验中的一个题目位置
type QuizSlot struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID              uint            `gorm:"not null;uniqueIndex:idx_quiz_slot_number,priority:1" json:"quizid"`
	Slot                int             `gorm:"not null;uniqueIndex:idx_quiz_slot_number,priority:2" json:"slot"`
	Page                int             `gorm:"not null" json:"page"`
	MaxMark             decimal.Decimal `gorm:"type:decimal(12,7);not null" json:"maxmark"`
	RequirePrevious     bool            `json:"requireprevious"`
	QuestionBankEntryID uint            `gorm:"index;not null" json:"questionbankentryid"`
	// Version 为空表示始终使用最新版本
	Version *int `json:"version"`
}
