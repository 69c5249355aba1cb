package repository

import (
	"context"
	"prompt_library_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VersionRepository struct {
	DB *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{DB: db}
}

func (r *VersionRepository) WithTx(tx *gorm.DB) *VersionRepository {
	return &VersionRepository{DB: tx}
}

func (r *VersionRepository) Create(ctx context.Context, v *model.PromptVersion) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// ListByPrompt 按快照时间倒序
func (r *VersionRepository) ListByPrompt(ctx context.Context, promptID uint) ([]model.PromptVersion, error) {
	var versions []model.PromptVersion
	err := r.DB.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("created_at DESC").Order("id DESC").
		Preload("EditedBy").
		Find(&versions).Error
	return versions, err
}

func (r *VersionRepository) FindByID(ctx context.Context, id uint) (*model.PromptVersion, error) {
	var v model.PromptVersion
	err := r.DB.WithContext(ctx).First(&v, id).Error
	return &v, err
}
