package repository

import (
	"context"
	"prompt_library_backend/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Visibility 列表/详情的可见范围
type Visibility struct {
	ViewerID   uint
	All        bool // 审核员可见全部
	IncludeOwn bool // mine=1 时附带自己的任意状态提示词
}

type PromptFilter struct {
	Category     string
	TaskType     string
	OutputFormat string
	Status       string
	Search       string
	Offset       int
	Limit        int
}

type PromptRepository struct {
	DB *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{DB: db}
}

// WithTx 返回绑定到事务的副本
func (r *PromptRepository) WithTx(tx *gorm.DB) *PromptRepository {
	return &PromptRepository{DB: tx}
}

// likeEscaper 搜索词按字面匹配；'!' 在 mysql / postgres / sqlite 中都不需要转义字面量
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func applyVisibility(query *gorm.DB, v Visibility) *gorm.DB {
	if v.All {
		return query
	}
	if v.IncludeOwn && v.ViewerID > 0 {
		return query.Where("(prompts.status = ? OR prompts.user_id = ?)", model.StatusApproved, v.ViewerID)
	}
	return query.Where("prompts.status = ?", model.StatusApproved)
}

func (r *PromptRepository) FindWithPagination(ctx context.Context, v Visibility, f PromptFilter) ([]model.Prompt, int64, error) {
	var prompts []model.Prompt
	var total int64

	query := applyVisibility(r.DB.WithContext(ctx).Model(&model.Prompt{}), v)

	if f.Category != "" {
		query = query.Where("prompts.category = ?", f.Category)
	}
	if f.TaskType != "" {
		query = query.Where("prompts.task_type = ?", f.TaskType)
	}
	if f.OutputFormat != "" {
		query = query.Where("prompts.output_format = ?", f.OutputFormat)
	}
	if f.Status != "" {
		query = query.Where("prompts.status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where("(LOWER(prompts.title) LIKE ? ESCAPE '!' OR LOWER(prompts.description) LIKE ? ESCAPE '!' OR LOWER(prompts.text) LIKE ? ESCAPE '!')", like, like, like)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("prompts.created_at DESC").Order("prompts.id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Preload("User").
		Find(&prompts).Error
	if err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

func (r *PromptRepository) FindVisibleByID(ctx context.Context, v Visibility, id uint) (*model.Prompt, error) {
	var prompt model.Prompt
	err := applyVisibility(r.DB.WithContext(ctx), v).
		Preload("User").
		First(&prompt, "prompts.id = ?", id).Error
	return &prompt, err
}

// FindVisibleByIDForUpdate 在事务中锁定提示词行（SQLite 方言会忽略 FOR UPDATE）
func (r *PromptRepository) FindVisibleByIDForUpdate(ctx context.Context, v Visibility, id uint) (*model.Prompt, error) {
	var prompt model.Prompt
	err := applyVisibility(r.DB.WithContext(ctx), v).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&prompt, "prompts.id = ?", id).Error
	if err != nil {
		return &prompt, err
	}
	if prompt.UserID != nil {
		var owner model.User
		if err := r.DB.WithContext(ctx).First(&owner, *prompt.UserID).Error; err == nil {
			prompt.User = &owner
		}
	}
	return &prompt, nil
}

func (r *PromptRepository) Create(ctx context.Context, prompt *model.Prompt) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(prompt).Error
}

// Save 覆盖全部字段，不级联保存作者
func (r *PromptRepository) Save(ctx context.Context, prompt *model.Prompt) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(prompt).Error
}

func (r *PromptRepository) UpdateStatus(ctx context.Context, prompt *model.Prompt, status model.PromptStatus) error {
	if err := r.DB.WithContext(ctx).Model(prompt).Update("status", status).Error; err != nil {
		return err
	}
	prompt.Status = status
	return nil
}

// UpdateAggregates 只写聚合列，不刷新 updated_at
func (r *PromptRepository) UpdateAggregates(ctx context.Context, prompt *model.Prompt, likes, dislikes int) error {
	err := r.DB.WithContext(ctx).Model(&model.Prompt{}).
		Where("id = ?", prompt.ID).
		UpdateColumns(map[string]interface{}{
			"like_count":    likes,
			"dislike_count": dislikes,
			"vote":          likes - dislikes,
		}).Error
	if err != nil {
		return err
	}
	prompt.LikeCount = likes
	prompt.DislikeCount = dislikes
	prompt.Vote = likes - dislikes
	return nil
}

// Delete 物理删除提示词及其版本、投票、收藏
func (r *PromptRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&model.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&model.PromptVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Prompt{}, "id = ?", id).Error
	})
}

// DistinctCategoriesByUser 用户自己用过的分类
func (r *PromptRepository) DistinctCategoriesByUser(ctx context.Context, userID uint) ([]string, error) {
	var categories []string
	err := r.DB.WithContext(ctx).Model(&model.Prompt{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("category", &categories).Error
	return categories, err
}

// FindBookmarkedBy 用户收藏的提示词，按收藏时间倒序
func (r *PromptRepository) FindBookmarkedBy(ctx context.Context, v Visibility, userID uint, offset, limit int) ([]model.Prompt, int64, error) {
	var prompts []model.Prompt
	var total int64

	query := applyVisibility(r.DB.WithContext(ctx).Model(&model.Prompt{}), v).
		Joins("JOIN bookmarks ON bookmarks.prompt_id = prompts.id AND bookmarks.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("bookmarks.created_at DESC").Order("prompts.id DESC").
		Offset(offset).Limit(limit).
		Preload("User").
		Find(&prompts).Error
	if err != nil {
		return nil, 0, err
	}
	return prompts, total, nil
}
