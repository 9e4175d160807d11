package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressNodes(t *testing.T) {
	f := newFixture(t)
	svc := NewReportService(f.users, f.courses, f.gate)
	other := f.addUser(t, "student2", model.SiteUser)
	require.NoError(t, f.courses.Enrol(f.ctx, f.course.ID, other.ID, model.RoleStudent))

	nodes, err := svc.ProgressNodes(f.ctx, f.as(f.teacher), f.student.ID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "reports", nodes[0].Category)

	nodes, err = svc.ProgressNodes(f.ctx, f.as(f.student), f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	nodes, err = svc.ProgressNodes(f.ctx, f.as(other), f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	_, err = svc.ProgressNodes(f.ctx, f.as(f.teacher), f.student.ID, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestProgressNodesRequireCourseReports(t *testing.T) {
	f := newFixture(t)
	svc := NewReportService(f.users, f.courses, f.gate)
	course := &model.Course{FullName: "No reports", EnableCompletion: true}
	require.NoError(t, f.courses.Create(f.ctx, course))
	require.NoError(t, f.courses.Enrol(f.ctx, course.ID, f.student.ID, model.RoleStudent))

	nodes, err := svc.ProgressNodes(f.ctx, f.as(f.student), f.student.ID, course.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
