package authz

import "lms_backend/internal/model"

// Checker 课程角色到能力集合的映射
type Checker struct {
	grants map[model.CourseRole]map[Permission]bool
}

func NewChecker(roles map[model.CourseRole][]Permission) *Checker {
	c := &Checker{grants: make(map[model.CourseRole]map[Permission]bool, len(roles))}
	for role, perms := range roles {
		set := make(map[Permission]bool, len(perms))
		for _, p := range perms {
			set[p] = true
		}
		c.grants[role] = set
	}
	return c
}

// DefaultChecker 标准角色原型
func DefaultChecker() *Checker {
	return NewChecker(map[model.CourseRole][]Permission{
		model.RoleStudent: {
			QuizView,
		},
		model.RoleTeacher: {
			QuizView, QuizPreview, QuestionViewAll,
			BadgesViewAwarded, ReportProgressView,
		},
		model.RoleEditingTeacher: {
			QuizView, QuizPreview, QuizManage,
			QuestionUseAll, QuestionEditAll, QuestionViewAll,
			BadgesViewAwarded, BadgesConfigure, ReportProgressView,
		},
		model.RoleManager: AllPermissions(),
	})
}

func (c *Checker) Has(role model.CourseRole, p Permission) bool {
	return c.grants[role][p]
}

func (c *Checker) Any(role model.CourseRole, perms ...Permission) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}
