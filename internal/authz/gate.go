package authz

import (
	"context"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// RoleResolver 查询用户在课程中的角色
type RoleResolver interface {
	RoleInCourse(ctx context.Context, courseID, userID uint) (model.CourseRole, bool, error)
}

type Gate struct {
	Roles   RoleResolver
	Checker *Checker
}

func NewGate(roles RoleResolver, checker *Checker) *Gate {
	return &Gate{Roles: roles, Checker: checker}
}

// Has 判断调用者在课程上下文中是否具备能力，站点管理员全部放行
func (g *Gate) Has(ctx context.Context, ac AuthorizationContext, courseID uint, p Permission) (bool, error) {
	if ac.UserID == 0 {
		return false, nil
	}
	if ac.IsSiteAdmin() {
		return true, nil
	}
	role, ok, err := g.Roles.RoleInCourse(ctx, courseID, ac.UserID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return g.Checker.Has(role, p), nil
}

// Require 先校验上下文一致，再要求能力
func (g *Gate) Require(ctx context.Context, ac AuthorizationContext, courseID uint, p Permission) error {
	if err := g.ValidateContext(ac.PageCourseID, courseID); err != nil {
		return err
	}
	ok, err := g.Has(ctx, ac, courseID, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s required", util.ErrPermissionDenied, p)
	}
	return nil
}

// RequireSite 站点级能力，目前只有站点管理员持有
func (g *Gate) RequireSite(ac AuthorizationContext, p Permission) error {
	if ac.UserID != 0 && ac.IsSiteAdmin() {
		return nil
	}
	return fmt.Errorf("%w: site %s required", util.ErrPermissionDenied, p)
}

// ValidateContext expected 为 0 时不校验
func (g *Gate) ValidateContext(expectedCourseID, actualCourseID uint) error {
	if expectedCourseID == 0 || expectedCourseID == actualCourseID {
		return nil
	}
	return fmt.Errorf("%w: resource belongs to course %d, not %d", util.ErrPermissionDenied, actualCourseID, expectedCourseID)
}

// RequireQuestionUse useall，或 usemine 且题目由本人创建
func (g *Gate) RequireQuestionUse(ctx context.Context, ac AuthorizationContext, courseID uint, q *model.Question) error {
	return g.requireAllOrMine(ctx, ac, courseID, q, QuestionUseAll, QuestionUseMine)
}

// RequireQuestionEdit editall，或 editmine 且题目由本人创建
func (g *Gate) RequireQuestionEdit(ctx context.Context, ac AuthorizationContext, courseID uint, q *model.Question) error {
	return g.requireAllOrMine(ctx, ac, courseID, q, QuestionEditAll, QuestionEditMine)
}

func (g *Gate) requireAllOrMine(ctx context.Context, ac AuthorizationContext, courseID uint, q *model.Question, all, mine Permission) error {
	ok, err := g.Has(ctx, ac, courseID, all)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if q.CreatedBy == ac.UserID {
		ok, err = g.Has(ctx, ac, courseID, mine)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s required for question %d", util.ErrPermissionDenied, all, q.ID)
}
