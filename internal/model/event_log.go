package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventLog 事件总线上发布过的事件，追加写入
type EventLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"size:100;index;not null" json:"eventname"`
	ObjectID  uint           `json:"objectid"`
	CourseID  uint           `gorm:"index" json:"courseid"`
	UserID    uint           `json:"userid"`
	Data      datatypes.JSON `json:"other"`
	CreatedAt time.Time      `json:"timecreated"`
}
