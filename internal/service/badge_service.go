package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"lms_backend/internal/authz"
	"lms_backend/internal/config"
	"lms_backend/internal/event"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"path"
	"strings"

	"go.uber.org/zap"
)

// 站点徽章报表的标题
const SiteAdministrationHeading = "Site administration"

const (
	DownloadCSV  = "csv"
	DownloadJSON = "json"
)

type BadgeRecipientsReport struct {
	Badge      *model.Badge           `json:"badge"`
	Heading    string                 `json:"heading"`
	ImageURL   string                 `json:"imageurl,omitempty"`
	Recipients []repository.Recipient `json:"recipients"`
	Total      int                    `json:"total"`
}

// BadgeDownload 以附件形式返回的报表文件
type BadgeDownload struct {
	Filename    string
	ContentType string
	Body        []byte
}

type BadgeService struct {
	Badges  *repository.BadgeRepository
	Courses *repository.CourseRepository
	Gate    *authz.Gate
	Storage StorageProvider
	Events  *event.Bus
	// Flags 每次调用时读取，配置热更新后立即生效
	Flags func() config.BadgesConfig
}

func NewBadgeService(badges *repository.BadgeRepository, courses *repository.CourseRepository, gate *authz.Gate,
	storage StorageProvider, events *event.Bus, flags func() config.BadgesConfig) *BadgeService {
	return &BadgeService{Badges: badges, Courses: courses, Gate: gate, Storage: storage, Events: events, Flags: flags}
}

// load 校验开关与 BadgesViewAwarded，返回徽章和报表标题
func (s *BadgeService) load(ctx context.Context, ac authz.AuthorizationContext, badgeID uint, perm authz.Permission) (*model.Badge, string, error) {
	flags := s.Flags()
	if !flags.Enabled {
		return nil, "", fmt.Errorf("%w: badges are disabled", util.ErrFeatureDisabled)
	}
	badge, err := s.Badges.FindByID(ctx, badgeID)
	if err != nil {
		return nil, "", err
	}

	if badge.Type != model.BadgeTypeCourse || badge.CourseID == nil {
		if err := s.Gate.Require(ctx, ac, model.SiteCourseID, perm); err != nil {
			return nil, "", err
		}
		return badge, SiteAdministrationHeading, nil
	}

	if err := s.Gate.Require(ctx, ac, *badge.CourseID, perm); err != nil {
		return nil, "", err
	}
	if !flags.AllowCourseBadges {
		return nil, "", fmt.Errorf("%w: course badges are disabled", util.ErrFeatureDisabled)
	}
	course, err := s.Courses.FindByID(ctx, *badge.CourseID)
	if err != nil {
		return nil, "", err
	}
	return badge, course.FullName, nil
}

func (s *BadgeService) imageURL(b *model.Badge) string {
	if b.ImageKey == "" || s.Storage == nil {
		return ""
	}
	return s.Storage.GetURL(b.ImageKey)
}

// Recipients 徽章获得者报表
func (s *BadgeService) Recipients(ctx context.Context, ac authz.AuthorizationContext, badgeID uint) (*BadgeRecipientsReport, error) {
	badge, heading, err := s.load(ctx, ac, badgeID, authz.BadgesViewAwarded)
	if err != nil {
		return nil, err
	}
	rows, err := s.Badges.Recipients(ctx, badge.ID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repository.Recipient{}
	}
	return &BadgeRecipientsReport{
		Badge:      badge,
		Heading:    heading,
		ImageURL:   s.imageURL(badge),
		Recipients: rows,
		Total:      len(rows),
	}, nil
}

// Download 导出报表，format 仅支持 csv / json
func (s *BadgeService) Download(ctx context.Context, ac authz.AuthorizationContext, badgeID uint, format string) (*BadgeDownload, error) {
	format = strings.ToLower(format)
	if format != DownloadCSV && format != DownloadJSON {
		return nil, fmt.Errorf("%w: unsupported download format %q", util.ErrValidation, format)
	}
	report, err := s.Recipients(ctx, ac, badgeID)
	if err != nil {
		return nil, err
	}

	dl := &BadgeDownload{Filename: fmt.Sprintf("badge_%d_recipients.%s", badgeID, format)}
	switch format {
	case DownloadCSV:
		dl.ContentType = "text/csv; charset=utf-8"
		dl.Body, err = recipientsCSV(report.Recipients)
	case DownloadJSON:
		dl.ContentType = "application/json"
		dl.Body, err = json.MarshalIndent(report.Recipients, "", "  ")
	}
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		if err := s.Events.Publish(ctx, event.Event{
			Name:     event.BadgeRecipientsViewed,
			ObjectID: badgeID,
			CourseID: badgeCourse(report.Badge),
			UserID:   ac.UserID,
			Data:     map[string]interface{}{"format": format},
		}); err != nil {
			return nil, err
		}
	}
	return dl, nil
}

func recipientsCSV(rows []repository.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"First name", "Last name", "Email address", "Date issued"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.FirstName, r.LastName, r.Email, r.DateIssued.Format(util.TimeFormat)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func badgeCourse(b *model.Badge) uint {
	if b.CourseID == nil {
		return model.SiteCourseID
	}
	return *b.CourseID
}

// UploadImage 需要 BadgesConfigure，替换旧图片
func (s *BadgeService) UploadImage(ctx context.Context, ac authz.AuthorizationContext, badgeID uint, filename string, reader io.Reader, size int64) (string, error) {
	badge, _, err := s.load(ctx, ac, badgeID, authz.BadgesConfigure)
	if err != nil {
		return "", err
	}
	mimeType, body, err := util.SniffImage(reader, filename)
	if err != nil {
		return "", err
	}

	key := path.Join("badges", fmt.Sprint(badge.ID), model.GenerateUUID()+strings.ToLower(path.Ext(filename)))
	url, err := s.Storage.Upload(ctx, key, body, size, mimeType)
	if err != nil {
		return "", err
	}
	if err := s.Badges.UpdateImage(ctx, badge.ID, key); err != nil {
		return "", err
	}
	if badge.ImageKey != "" {
		if err := s.Storage.Delete(ctx, badge.ImageKey); err != nil {
			logger.Log.Warn("删除旧徽章图片失败", zap.String("key", badge.ImageKey), zap.Error(err))
		}
	}
	logger.Log.Info("徽章图片已更新", zap.Uint("badge_id", badge.ID), zap.Uint("user_id", ac.UserID))
	return url, nil
}
