package repository

import (
	"context"
	"errors"
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "course", id)
	}
	return &c, nil
}

// Enrol 已选课时更新角色
func (r *CourseRepository) Enrol(ctx context.Context, courseID, userID uint, role model.CourseRole) error {
	e := &model.Enrolment{CourseID: courseID, UserID: userID, Role: role}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(e).Error
}

// RoleInCourse 实现 authz.RoleResolver
func (r *CourseRepository) RoleInCourse(ctx context.Context, courseID, userID uint) (model.CourseRole, bool, error) {
	var e model.Enrolment
	err := r.DB.WithContext(ctx).Where("course_id = ? AND user_id = ?", courseID, userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Role, true, nil
}
