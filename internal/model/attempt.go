package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuestionUsage 一组题目尝试的容器，测验尝试通过 UniqueID 引用
type QuestionUsage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Component string    `gorm:"size:255;not null" json:"component"`
	CourseID  uint      `json:"courseid"`
	CreatedAt time.Time `json:"createdAt"`
}

type QuestionAttempt struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UsageID    uint            `gorm:"index;not null" json:"questionusageid"`
	Slot       int             `gorm:"not null" json:"slot"`
	QuestionID uint            `gorm:"index;not null" json:"questionid"`
	MaxMark    decimal.Decimal `gorm:"type:decimal(12,7);not null" json:"maxmark"`
}

type AttemptState string

const (
	AttemptInProgress AttemptState = "inprogress"
	AttemptFinished   AttemptState = "finished"
	AttemptAbandoned  AttemptState = "abandoned"
)

type QuizAttempt struct {
	ID         uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID     uint                `gorm:"index;not null" json:"quiz"`
	UserID     uint                `gorm:"index;not null" json:"userid"`
	Attempt    int                 `gorm:"not null" json:"attempt"`
	UniqueID   uint                `gorm:"index;not null" json:"uniqueid"`
	Preview    bool                `json:"preview"`
	State      AttemptState        `gorm:"size:16;not null" json:"state"`
	SumGrades  decimal.NullDecimal `gorm:"type:decimal(10,5)" json:"sumgrades"`
	TimeStart  time.Time           `json:"timestart"`
	TimeFinish *time.Time          `json:"timefinish"`
}
