package model

import "strings"

type SiteRole string

const (
	SiteUser  SiteRole = "user"
	SiteAdmin SiteRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string   `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string   `gorm:"size:100;not null" json:"email"`
	FirstName string   `gorm:"size:100" json:"firstname"`
	LastName  string   `gorm:"size:100" json:"lastname"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	SiteRole  SiteRole `gorm:"size:20;not null" json:"siteRole"`
	Disabled  bool     `json:"disabled"`
}

func (User) TableName() string {
	return "users"
}

// FullName 名 + 姓，缺省时回退到用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
