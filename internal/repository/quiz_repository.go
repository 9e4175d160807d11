package repository

import (
	"context"
	"lms_backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

// Create 新建测验并附带默认的第一节
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		return tx.Create(&model.QuizSection{QuizID: quiz.ID, FirstSlot: 1}).Error
	})
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, notFound(err, "quiz", id)
	}
	return &quiz, nil
}

func (r *QuizRepository) Sections(ctx context.Context, quizID uint) ([]*model.QuizSection, error) {
	var sections []*model.QuizSection
	err := r.DB.WithContext(ctx).Where("quiz_id = ?", quizID).Order("first_slot ASC").Find(&sections).Error
	return sections, err
}

func (r *QuizRepository) Slots(ctx context.Context, quizID uint) ([]*model.QuizSlot, error) {
	var slots []*model.QuizSlot
	err := r.DB.WithContext(ctx).Where("quiz_id = ?", quizID).Order("slot ASC").Find(&slots).Error
	return slots, err
}

func (r *QuizRepository) AddSlot(ctx context.Context, slot *model.QuizSlot) error {
	return r.DB.WithContext(ctx).Create(slot).Error
}

func (r *QuizRepository) CreateSection(ctx context.Context, section *model.QuizSection) error {
	return r.DB.WithContext(ctx).Create(section).Error
}

func (r *QuizRepository) DeleteSlot(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.QuizSlot{}, id).Error
}

func (r *QuizRepository) DeleteSection(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.QuizSection{}, id).Error
}

// SaveLayout 写回槽位编号、页码、依赖标记以及各节首槽位。
// 先把编号挪到负数区间，保证 (quiz_id, slot) 与 (quiz_id, first_slot) 唯一索引在重排中不冲突。
func (r *QuizRepository) SaveLayout(ctx context.Context, quizID uint, slots []*model.QuizSlot, sections []*model.QuizSection) error {
	db := r.DB.WithContext(ctx)

	if len(slots) > 0 {
		if err := db.Model(&model.QuizSlot{}).Where("quiz_id = ?", quizID).
			Update("slot", gorm.Expr("0 - id")).Error; err != nil {
			return err
		}
		for _, s := range slots {
			if err := db.Model(&model.QuizSlot{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
				"slot":             s.Slot,
				"page":             s.Page,
				"require_previous": s.RequirePrevious,
			}).Error; err != nil {
				return err
			}
		}
	}

	if len(sections) > 0 {
		if err := db.Model(&model.QuizSection{}).Where("quiz_id = ?", quizID).
			Update("first_slot", gorm.Expr("0 - id")).Error; err != nil {
			return err
		}
		for _, sec := range sections {
			if err := db.Model(&model.QuizSection{}).Where("id = ?", sec.ID).
				Update("first_slot", sec.FirstSlot).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *QuizRepository) UpdateSection(ctx context.Context, sectionID uint, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.QuizSection{}).Where("id = ?", sectionID).Updates(fields).Error
}

func (r *QuizRepository) UpdateSlot(ctx context.Context, slotID uint, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.QuizSlot{}).Where("id = ?", slotID).Updates(fields).Error
}

func (r *QuizRepository) UpdateSlotMaxMark(ctx context.Context, slotID uint, mark decimal.Decimal) error {
	return r.DB.WithContext(ctx).Model(&model.QuizSlot{}).Where("id = ?", slotID).Update("max_mark", mark).Error
}

func (r *QuizRepository) UpdateSlotPages(ctx context.Context, slots []*model.QuizSlot) error {
	db := r.DB.WithContext(ctx)
	for _, s := range slots {
		if err := db.Model(&model.QuizSlot{}).Where("id = ?", s.ID).Update("page", s.Page).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *QuizRepository) UpdateFields(ctx context.Context, quizID uint, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.Quiz{}).Where("id = ?", quizID).Updates(fields).Error
}

// SumMaxMarks 按槽位逐条相加，避免不同数据库 SUM 返回类型不一致
func (r *QuizRepository) SumMaxMarks(ctx context.Context, quizID uint) (decimal.Decimal, error) {
	var marks []decimal.Decimal
	if err := r.DB.WithContext(ctx).Model(&model.QuizSlot{}).Where("quiz_id = ?", quizID).
		Pluck("max_mark", &marks).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, m := range marks {
		sum = sum.Add(m)
	}
	return sum, nil
}
