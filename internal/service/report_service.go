package service

import (
	"context"
	"fmt"
	"lms_backend/internal/authz"
	"lms_backend/internal/repository"
)

// NavigationNode 个人资料页“报表”分类下的导航项
type NavigationNode struct {
	Key      string `json:"key"`
	Category string `json:"category"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

type ReportService struct {
	Users   *repository.UserRepository
	Courses *repository.CourseRepository
	Gate    *authz.Gate
}

func NewReportService(users *repository.UserRepository, courses *repository.CourseRepository, gate *authz.Gate) *ReportService {
	return &ReportService{Users: users, Courses: courses, Gate: gate}
}

// ProgressNodes 课程或用户不存在时返回 ErrNotFound；无权查看时返回空列表
func (s *ReportService) ProgressNodes(ctx context.Context, ac authz.AuthorizationContext, userID, courseID uint) ([]NavigationNode, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	nodes := []NavigationNode{}
	ok, err := s.Gate.CanAccessUserReport(ctx, ac, user.ID, course)
	if err != nil || !ok {
		return nodes, err
	}
	nodes = append(nodes, NavigationNode{
		Key:      "progress",
		Category: "reports",
		Title:    "Activity completion",
		URL:      fmt.Sprintf("/report/progress/user?course=%d&user=%d", course.ID, user.ID),
	})
	return nodes, nil
}
