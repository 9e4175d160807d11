package repository

import (
	"context"
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

// Recipient 徽章获得者报表行
type Recipient struct {
	UserID     uint      `json:"userid"`
	FirstName  string    `json:"firstname"`
	LastName   string    `json:"lastname"`
	Email      string    `json:"email"`
	DateIssued time.Time `json:"dateissued"`
	UniqueHash string    `json:"uniquehash"`
}

func (r *BadgeRepository) Create(ctx context.Context, b *model.Badge) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *BadgeRepository) FindByID(ctx context.Context, id uint) (*model.Badge, error) {
	var b model.Badge
	if err := r.DB.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err, "badge", id)
	}
	return &b, nil
}

func (r *BadgeRepository) Issue(ctx context.Context, issued *model.BadgeIssued) error {
	if issued.UniqueHash == "" {
		issued.UniqueHash = model.GenerateUUID()
	}
	if issued.DateIssued.IsZero() {
		issued.DateIssued = time.Now()
	}
	return r.DB.WithContext(ctx).Create(issued).Error
}

// Recipients 按授予时间倒序
func (r *BadgeRepository) Recipients(ctx context.Context, badgeID uint) ([]Recipient, error) {
	var rows []Recipient
	err := r.DB.WithContext(ctx).Table("badge_issued").
		Select("users.id AS user_id, users.first_name, users.last_name, users.email, badge_issued.date_issued, badge_issued.unique_hash").
		Joins("JOIN users ON users.id = badge_issued.user_id AND users.deleted_at IS NULL").
		Where("badge_issued.badge_id = ?", badgeID).
		Order("badge_issued.date_issued DESC, users.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *BadgeRepository) UpdateImage(ctx context.Context, badgeID uint, key string) error {
	return r.DB.WithContext(ctx).Model(&model.Badge{}).Where("id = ?", badgeID).Update("image_key", key).Error
}
