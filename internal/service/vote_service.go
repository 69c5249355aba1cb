package service

import (
	"context"
	"errors"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"prompt_library_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	VoteOutcomeCreated   = "created"
	VoteOutcomeRetracted = "retracted"
	VoteOutcomeSwitched  = "switched"
)

type VoteService struct {
	DB         *gorm.DB
	PromptRepo *repository.PromptRepository
	VoteRepo   *repository.VoteRepository
	Prompts    *PromptService
}

func NewVoteService(db *gorm.DB, promptRepo *repository.PromptRepository, voteRepo *repository.VoteRepository, prompts *PromptService) *VoteService {
	return &VoteService{
		DB:         db,
		PromptRepo: promptRepo,
		VoteRepo:   voteRepo,
		Prompts:    prompts,
	}
}

func directionLabel(value int) string {
	if value == model.VoteUp {
		return "up"
	}
	return "down"
}

// CastVote 同方向重复投票即撤销，反方向则改票；聚合字段总是按台账重新统计
func (s *VoteService) CastVote(ctx context.Context, scope Scope, promptID uint, value int) (*PromptResponse, error) {
	if value != model.VoteUp && value != model.VoteDown {
		return nil, util.Validationf("vote value must be %d or %d", model.VoteUp, model.VoteDown)
	}
	if !scope.Actor.Authenticated() {
		return nil, util.ErrUnauthorized
	}

	var prompt *model.Prompt
	var outcome string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompts := s.PromptRepo.WithTx(tx)
		votes := s.VoteRepo.WithTx(tx)

		var err error
		prompt, err = prompts.FindVisibleByIDForUpdate(ctx, scope.visibility(), promptID)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}

		existing, err := votes.Find(ctx, scope.Actor.UserID, prompt.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome = VoteOutcomeCreated
			err = votes.Create(ctx, &model.Vote{UserID: scope.Actor.UserID, PromptID: prompt.ID, Value: value})
		case err != nil:
			return err
		case existing.Value == value:
			outcome = VoteOutcomeRetracted
			err = votes.Delete(ctx, existing)
		default:
			outcome = VoteOutcomeSwitched
			err = votes.UpdateValue(ctx, existing, value)
		}
		if err != nil {
			return err
		}

		likes, dislikes, err := votes.CountByPrompt(ctx, prompt.ID)
		if err != nil {
			return err
		}
		return prompts.UpdateAggregates(ctx, prompt, likes, dislikes)
	})
	if err != nil {
		return nil, err
	}

	monitoring.VotesTotal.WithLabelValues(directionLabel(value), outcome).Inc()
	logger.Log.Debug("vote recorded",
		zap.Uint("prompt_id", prompt.ID),
		zap.Uint("user_id", scope.Actor.UserID),
		zap.Int("value", value),
		zap.String("outcome", outcome),
		zap.Int("vote", prompt.Vote),
	)
	return s.Prompts.RepresentOne(ctx, scope.Actor, prompt)
}
