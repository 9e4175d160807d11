package authz

import "lms_backend/internal/model"

// AuthorizationContext 每次调用显式携带的调用者身份
type AuthorizationContext struct {
	UserID   uint
	SiteRole model.SiteRole
	// PageCourseID 请求声明所在的课程，0 表示未声明
	PageCourseID uint
}

func (ac AuthorizationContext) IsSiteAdmin() bool {
	return ac.SiteRole == model.SiteAdmin
}
