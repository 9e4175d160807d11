package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type badgeFixture struct {
	*fixture
	badges *repository.BadgeRepository
	flags  config.BadgesConfig
	svc    *BadgeService
	root   string
}

func newBadgeFixture(t *testing.T) *badgeFixture {
	f := &badgeFixture{
		fixture: newFixture(t),
		flags:   config.BadgesConfig{Enabled: true, AllowCourseBadges: true},
		root:    t.TempDir(),
	}
	f.badges = repository.NewBadgeRepository(f.db)
	f.svc = NewBadgeService(f.badges, f.courses, f.gate, &LocalStorageProvider{Root: f.root}, f.bus,
		func() config.BadgesConfig { return f.flags })
	return f
}

func (f *badgeFixture) addBadge(t *testing.T, courseID *uint) *model.Badge {
	t.Helper()
	b := &model.Badge{Name: "Quiz master", Type: model.BadgeTypeSite, CourseID: courseID}
	if courseID != nil {
		b.Type = model.BadgeTypeCourse
	}
	require.NoError(t, f.badges.Create(f.ctx, b))
	return b
}

func TestBadgeRecipients(t *testing.T) {
	f := newBadgeFixture(t)
	b := f.addBadge(t, &f.course.ID)
	now := time.Now()
	require.NoError(t, f.badges.Issue(f.ctx, &model.BadgeIssued{BadgeID: b.ID, UserID: f.student.ID, DateIssued: now.Add(-time.Hour)}))
	require.NoError(t, f.badges.Issue(f.ctx, &model.BadgeIssued{BadgeID: b.ID, UserID: f.teacher.ID, DateIssued: now}))

	report, err := f.svc.Recipients(f.ctx, f.as(f.teacher), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Course 1", report.Heading)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, f.teacher.ID, report.Recipients[0].UserID)
	assert.Equal(t, "student1@example.com", report.Recipients[1].Email)

	_, err = f.svc.Recipients(f.ctx, f.as(f.student), b.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.svc.Recipients(f.ctx, f.as(f.teacher), 999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestBadgeFeatureFlags(t *testing.T) {
	f := newBadgeFixture(t)
	course := f.addBadge(t, &f.course.ID)
	site := f.addBadge(t, nil)

	f.flags.AllowCourseBadges = false
	_, err := f.svc.Recipients(f.ctx, f.as(f.teacher), course.ID)
	assert.ErrorIs(t, err, util.ErrFeatureDisabled)

	report, err := f.svc.Recipients(f.ctx, f.as(f.admin), site.ID)
	require.NoError(t, err)
	assert.Equal(t, SiteAdministrationHeading, report.Heading)
	assert.Empty(t, report.Recipients)

	_, err = f.svc.Recipients(f.ctx, f.as(f.teacher), site.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	f.flags.Enabled = false
	_, err = f.svc.Recipients(f.ctx, f.as(f.admin), site.ID)
	assert.ErrorIs(t, err, util.ErrFeatureDisabled)
}

func TestBadgeDownload(t *testing.T) {
	f := newBadgeFixture(t)
	events := recordEvents(f.bus)
	b := f.addBadge(t, &f.course.ID)
	require.NoError(t, f.badges.Issue(f.ctx, &model.BadgeIssued{BadgeID: b.ID, UserID: f.student.ID}))

	dl, err := f.svc.Download(f.ctx, f.as(f.teacher), b.ID, "CSV")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dl.ContentType, "text/csv"))
	assert.True(t, strings.HasSuffix(dl.Filename, ".csv"))
	records, err := csv.NewReader(bytes.NewReader(dl.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Student1", "Tester", "student1@example.com"}, records[1][:3])

	dl, err = f.svc.Download(f.ctx, f.as(f.teacher), b.ID, "json")
	require.NoError(t, err)
	var rows []repository.Recipient
	require.NoError(t, json.Unmarshal(dl.Body, &rows))
	assert.Len(t, rows, 1)

	_, err = f.svc.Download(f.ctx, f.as(f.teacher), b.ID, "xlsx")
	assert.ErrorIs(t, err, util.ErrValidation)

	assert.Equal(t, []string{event.BadgeRecipientsViewed, event.BadgeRecipientsViewed}, eventNames(*events))
}

func TestBadgeUploadImage(t *testing.T) {
	f := newBadgeFixture(t)
	b := f.addBadge(t, &f.course.ID)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	url, err := f.svc.UploadImage(f.ctx, f.as(f.teacher), b.ID, "badge.png", bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/badges/"))

	stored, err := f.badges.FindByID(f.ctx, b.ID)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash(stored.ImageKey)))
	assert.NoError(t, err)

	report, err := f.svc.Recipients(f.ctx, f.as(f.teacher), b.ID)
	require.NoError(t, err)
	assert.Equal(t, url, report.ImageURL)

	_, err = f.svc.UploadImage(f.ctx, f.as(f.teacher), b.ID, "badge.txt", bytes.NewReader(png), int64(len(png)))
	assert.ErrorIs(t, err, util.ErrValidation)

	teacher := f.addUser(t, "teacher2", model.SiteUser)
	require.NoError(t, f.courses.Enrol(f.ctx, f.course.ID, teacher.ID, model.RoleTeacher))
	_, err = f.svc.UploadImage(f.ctx, f.as(teacher), b.ID, "badge.png", bytes.NewReader(png), int64(len(png)))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
