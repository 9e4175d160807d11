package model

import "time"

type BadgeType int

const (
	BadgeTypeSite   BadgeType = 1
	BadgeTypeCourse BadgeType = 2
)

// swagger:model Badge
type Badge struct {
	BaseModel
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Type        BadgeType `gorm:"not null" json:"type"`
	CourseID    *uint     `gorm:"index" json:"courseid"`
	ImageKey    string    `gorm:"size:255" json:"-"`
}

// BadgeIssued 徽章授予记录
type BadgeIssued struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_badge_issued_user,priority:1" json:"badgeid"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_badge_issued_user,priority:2" json:"userid"`
	UniqueHash string    `gorm:"size:40;uniqueIndex" json:"uniquehash"`
	DateIssued time.Time `json:"dateissued"`
	Visible    bool      `json:"visible"`
}

func (BadgeIssued) TableName() string {
	return "badge_issued"
}
