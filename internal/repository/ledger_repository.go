package repository

import (
	"context"
	"prompt_library_backend/internal/model"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: db}
}

func (r *VoteRepository) WithTx(tx *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: tx}
}

func (r *VoteRepository) Find(ctx context.Context, userID, promptID uint) (*model.Vote, error) {
	var vote model.Vote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		First(&vote).Error
	return &vote, err
}

func (r *VoteRepository) Create(ctx context.Context, vote *model.Vote) error {
	return r.DB.WithContext(ctx).Create(vote).Error
}

func (r *VoteRepository) UpdateValue(ctx context.Context, vote *model.Vote, value int) error {
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND prompt_id = ?", vote.UserID, vote.PromptID).
		Update("value", value).Error
	if err != nil {
		return err
	}
	vote.Value = value
	return nil
}

func (r *VoteRepository) Delete(ctx context.Context, vote *model.Vote) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", vote.UserID, vote.PromptID).
		Delete(&model.Vote{}).Error
}

// CountByPrompt 从投票表重新统计赞/踩数
func (r *VoteRepository) CountByPrompt(ctx context.Context, promptID uint) (likes, dislikes int, err error) {
	var likeCount, dislikeCount int64
	if err = r.DB.WithContext(ctx).Model(&model.Vote{}).
		Where("prompt_id = ? AND value = ?", promptID, model.VoteUp).
		Count(&likeCount).Error; err != nil {
		return 0, 0, err
	}
	if err = r.DB.WithContext(ctx).Model(&model.Vote{}).
		Where("prompt_id = ? AND value = ?", promptID, model.VoteDown).
		Count(&dislikeCount).Error; err != nil {
		return 0, 0, err
	}
	return int(likeCount), int(dislikeCount), nil
}

// ValuesByUser 当前用户在一批提示词上的投票
func (r *VoteRepository) ValuesByUser(ctx context.Context, userID uint, promptIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(promptIDs))
	if userID == 0 || len(promptIDs) == 0 {
		return result, nil
	}
	var votes []model.Vote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND prompt_id IN ?", userID, promptIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		result[v.PromptID] = v.Value
	}
	return result, nil
}

// SumByPrompts 投票值之和，直接来自投票表
func (r *VoteRepository) SumByPrompts(ctx context.Context, promptIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(promptIDs))
	if len(promptIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PromptID uint
		Total    int
	}
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Select("prompt_id, COALESCE(SUM(value), 0) AS total").
		Where("prompt_id IN ?", promptIDs).
		Group("prompt_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PromptID] = row.Total
	}
	return result, nil
}

type BookmarkRepository struct {
	DB *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

func (r *BookmarkRepository) WithTx(tx *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: tx}
}

func (r *BookmarkRepository) Exists(ctx context.Context, userID, promptID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Count(&count).Error
	return count > 0, err
}

func (r *BookmarkRepository) Create(ctx context.Context, userID, promptID uint) error {
	return r.DB.WithContext(ctx).Create(&model.Bookmark{UserID: userID, PromptID: promptID}).Error
}

func (r *BookmarkRepository) Delete(ctx context.Context, userID, promptID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Delete(&model.Bookmark{}).Error
}

// BookmarkedSet 当前用户收藏了哪些提示词
func (r *BookmarkRepository) BookmarkedSet(ctx context.Context, userID uint, promptIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(promptIDs))
	if userID == 0 || len(promptIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND prompt_id IN ?", userID, promptIDs).
		Pluck("prompt_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
