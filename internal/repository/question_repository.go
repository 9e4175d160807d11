package repository

import (
	"context"
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

func (r *QuestionRepository) CreateCategory(ctx context.Context, c *model.QuestionCategory) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

// CreateVersion 在条目下追加新版本；entry.ID 为 0 时先创建条目
func (r *QuestionRepository) CreateVersion(ctx context.Context, entry *model.QuestionBankEntry, q *model.Question) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.ID == 0 {
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		var maxVersion int
		if err := tx.Model(&model.Question{}).Where("bank_entry_id = ?", entry.ID).
			Select("COALESCE(MAX(version), 0)").Scan(&maxVersion).Error; err != nil {
			return err
		}
		q.BankEntryID = entry.ID
		q.Version = maxVersion + 1
		if q.Status == "" {
			q.Status = model.QuestionReady
		}
		return tx.Create(q).Error
	})
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err, "question", id)
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []uint) ([]*model.Question, error) {
	var qs []*model.Question
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) FindEntry(ctx context.Context, entryID uint) (*model.QuestionBankEntry, error) {
	var e model.QuestionBankEntry
	if err := r.DB.WithContext(ctx).First(&e, entryID).Error; err != nil {
		return nil, notFound(err, "question bank entry", entryID)
	}
	return &e, nil
}

// CourseForEntry 题库条目所在课程
func (r *QuestionRepository) CourseForEntry(ctx context.Context, entryID uint) (uint, error) {
	var courseIDs []uint
	err := r.DB.WithContext(ctx).Table("question_categories").
		Joins("JOIN question_bank_entries ON question_bank_entries.category_id = question_categories.id").
		Where("question_bank_entries.id = ?", entryID).
		Pluck("question_categories.course_id", &courseIDs).Error
	if err != nil {
		return 0, err
	}
	if len(courseIDs) == 0 {
		return 0, notFound(gorm.ErrRecordNotFound, "question bank entry", entryID)
	}
	return courseIDs[0], nil
}

// Versions 条目下全部版本，按版本号升序
func (r *QuestionRepository) Versions(ctx context.Context, entryID uint) ([]*model.Question, error) {
	var qs []*model.Question
	err := r.DB.WithContext(ctx).Where("bank_entry_id = ?", entryID).Order("version ASC").Find(&qs).Error
	return qs, err
}

// VersionsForEntries 多个条目的全部版本
func (r *QuestionRepository) VersionsForEntries(ctx context.Context, entryIDs []uint) ([]*model.Question, error) {
	var qs []*model.Question
	if len(entryIDs) == 0 {
		return qs, nil
	}
	err := r.DB.WithContext(ctx).Where("bank_entry_id IN ?", entryIDs).
		Order("bank_entry_id ASC, version ASC").Find(&qs).Error
	return qs, err
}

// SlotReferences 引用了该条目的槽位版本设置，nil 表示始终用最新版本
func (r *QuestionRepository) SlotReferences(ctx context.Context, entryID uint) ([]*int, error) {
	var slots []model.QuizSlot
	if err := r.DB.WithContext(ctx).Select("version").
		Where("question_bank_entry_id = ?", entryID).Find(&slots).Error; err != nil {
		return nil, err
	}
	refs := make([]*int, 0, len(slots))
	for _, s := range slots {
		refs = append(refs, s.Version)
	}
	return refs, nil
}

// QuizIDsForEntries 有槽位引用这些条目的测验
func (r *QuestionRepository) QuizIDsForEntries(ctx context.Context, entryIDs []uint) ([]uint, error) {
	var ids []uint
	if len(entryIDs) == 0 {
		return ids, nil
	}
	err := r.DB.WithContext(ctx).Model(&model.QuizSlot{}).
		Where("question_bank_entry_id IN ?", entryIDs).Distinct().Pluck("quiz_id", &ids).Error
	return ids, err
}

func (r *QuestionRepository) Hide(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).
		Update("status", model.QuestionHidden).Error
}

func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.Question{}, id).Error
}

// DeleteEntryIfEmpty 条目下已没有版本时删除条目
func (r *QuestionRepository) DeleteEntryIfEmpty(ctx context.Context, entryID uint) (bool, error) {
	db := r.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&model.Question{}).Where("bank_entry_id = ?", entryID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, db.Delete(&model.QuestionBankEntry{}, entryID).Error
}
