package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuestionStatus string

const (
	QuestionReady  QuestionStatus = "ready"
	QuestionHidden QuestionStatus = "hidden"
	QuestionDraft  QuestionStatus = "draft"
)

// QTypeDescription 说明性题目不计入题目数量
const QTypeDescription = "description"

type QuestionCategory struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID uint   `gorm:"index;not null" json:"courseid"`
	Name     string `gorm:"size:255;not null" json:"name"`
}

// QuestionBankEntry 题库条目，同一题目的所有版本共享一个条目
type QuestionBankEntry struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID uint `gorm:"index;not null" json:"questioncategoryid"`
	OwnerID    uint `json:"ownerid"`
}

// Question 题目的一个版本
type Question struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	BankEntryID  uint            `gorm:"not null;uniqueIndex:idx_question_entry_version,priority:1" json:"questionbankentryid"`
	Version      int             `gorm:"not null;uniqueIndex:idx_question_entry_version,priority:2" json:"version"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	QuestionText string          `gorm:"type:text" json:"questiontext"`
	QType        string          `gorm:"size:20;not null" json:"qtype"`
	Status       QuestionStatus  `gorm:"size:10;not null" json:"status"`
	DefaultMark  decimal.Decimal `gorm:"type:decimal(12,7);not null" json:"defaultmark"`
	CreatedBy    uint            `json:"createdby"`
	CreatedAt    time.Time       `json:"timecreated"`
	UpdatedAt    time.Time       `json:"timemodified"`
}
