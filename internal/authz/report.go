package authz

import (
	"context"
	"lms_backend/internal/model"
)

// CanAccessUserReport 有 report/progress:view 的用户可看任何人；
// 已选课的本人在课程开启完成度跟踪且展示报告时可看自己的
func (g *Gate) CanAccessUserReport(ctx context.Context, ac AuthorizationContext, subjectUserID uint, course *model.Course) (bool, error) {
	ok, err := g.Has(ctx, ac, course.ID, ReportProgressView)
	if err != nil || ok {
		return ok, err
	}
	if ac.UserID == 0 || ac.UserID != subjectUserID {
		return false, nil
	}
	if !course.EnableCompletion || !course.ShowReports {
		return false, nil
	}
	_, enrolled, err := g.Roles.RoleInCourse(ctx, course.ID, ac.UserID)
	return enrolled, err
}
