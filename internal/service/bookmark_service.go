package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type BookmarkService struct {
	DB           *gorm.DB
	PromptRepo   *repository.PromptRepository
	BookmarkRepo *repository.BookmarkRepository
	Prompts      *PromptService
}

func NewBookmarkService(db *gorm.DB, promptRepo *repository.PromptRepository, bookmarkRepo *repository.BookmarkRepository, prompts *PromptService) *BookmarkService {
	return &BookmarkService{
		DB:           db,
		PromptRepo:   promptRepo,
		BookmarkRepo: bookmarkRepo,
		Prompts:      prompts,
	}
}

// Toggle 已收藏则取消，否则收藏
func (s *BookmarkService) Toggle(ctx context.Context, scope Scope, promptID uint) (*PromptResponse, error) {
	if !scope.Actor.Authenticated() {
		return nil, util.ErrUnauthorized
	}

	var prompt *model.Prompt
	var bookmarked bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookmarks := s.BookmarkRepo.WithTx(tx)

		var err error
		prompt, err = s.PromptRepo.WithTx(tx).FindVisibleByIDForUpdate(ctx, scope.visibility(), promptID)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}

		exists, err := bookmarks.Exists(ctx, scope.Actor.UserID, prompt.ID)
		if err != nil {
			return err
		}
		if exists {
			return bookmarks.Delete(ctx, scope.Actor.UserID, prompt.ID)
		}
		bookmarked = true
		return bookmarks.Create(ctx, scope.Actor.UserID, prompt.ID)
	})
	if err != nil {
		return nil, err
	}

	state := "removed"
	if bookmarked {
		state = "added"
	}
	monitoring.BookmarkToggles.WithLabelValues(state).Inc()
	return s.Prompts.RepresentOne(ctx, scope.Actor, prompt)
}

// List 当前用户的收藏，最近收藏的在前；已不可见的提示词不返回
func (s *BookmarkService) List(ctx context.Context, actor Actor, page, limit int) (*PromptPage, error) {
	if !actor.Authenticated() {
		return nil, util.ErrUnauthorized
	}

	page, limit = normalizePage(page, limit)
	scope := Scope{Actor: actor, Mine: true}
	prompts, total, err := s.PromptRepo.FindBookmarkedBy(ctx, scope.visibility(), actor.UserID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses, err := s.Prompts.Represent(ctx, actor, prompts)
	if err != nil {
		return nil, err
	}
	return &PromptPage{List: responses, Total: total, Page: page, Limit: limit}, nil
}
