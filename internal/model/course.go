package model

import "time"

// SiteCourseID 站点首页课程，站点级徽章与题库挂在它下面
const SiteCourseID uint = 1

// swagger:model Course
type Course struct {
	BaseModel
	FullName         string `gorm:"size:255;not null" json:"fullname"`
	ShortName        string `gorm:"size:100" json:"shortname"`
	EnableCompletion bool   `json:"enablecompletion"`
	ShowReports      bool   `json:"showreports"`
}

type CourseRole string

const (
	RoleStudent        CourseRole = "student"
	RoleTeacher        CourseRole = "teacher"
	RoleEditingTeacher CourseRole = "editingteacher"
	RoleManager        CourseRole = "manager"
)

// Enrolment 用户在课程中的角色
type Enrolment struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint       `gorm:"not null;uniqueIndex:idx_enrolment_course_user,priority:1" json:"courseid"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_enrolment_course_user,priority:2" json:"userid"`
	Role      CourseRole `gorm:"size:30;not null" json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SiteSetting 站点级键值配置（站点名称等）
type SiteSetting struct {
	Name  string `gorm:"primaryKey;size:100" json:"name"`
	Value string `gorm:"type:text" json:"value"`
}
