package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"prompt_library_backend/pkg/monitoring"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ActionApprove        = "approve"
	ActionReject         = "reject"
	ActionRequestDelete  = "request_delete"
	ActionDeleteApproved = "delete_approved"
	ActionDeleteRejected = "delete_rejected"
)

// ModerationService 审核流程：通过、驳回、申请删除与删除审核
type ModerationService struct {
	DB         *gorm.DB
	PromptRepo *repository.PromptRepository
	Prompts    *PromptService
}

func NewModerationService(db *gorm.DB, promptRepo *repository.PromptRepository, prompts *PromptService) *ModerationService {
	return &ModerationService{
		DB:         db,
		PromptRepo: promptRepo,
		Prompts:    prompts,
	}
}

func requireStaff(a Actor, _ *model.Prompt) error {
	if !a.IsStaff {
		return util.ErrModeratorOnly
	}
	return nil
}

func requireOwnerOrStaff(a Actor, p *model.Prompt) error {
	if !canWrite(a, p) {
		return util.ErrDeleteRequestOwner
	}
	return nil
}

// transition 在事务中锁定提示词，校验权限后切换状态
func (s *ModerationService) transition(
	ctx context.Context,
	scope Scope,
	promptID uint,
	action string,
	authorize func(Actor, *model.Prompt) error,
	next func(*model.Prompt) (model.PromptStatus, error),
) (*PromptResponse, error) {
	var prompt *model.Prompt
	var from model.PromptStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompts := s.PromptRepo.WithTx(tx)

		var err error
		prompt, err = prompts.FindVisibleByIDForUpdate(ctx, scope.visibility(), promptID)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}
		if err := authorize(scope.Actor, prompt); err != nil {
			return err
		}

		to, err := next(prompt)
		if err != nil {
			return err
		}
		from = prompt.Status
		return prompts.UpdateStatus(ctx, prompt, to)
	})
	if err != nil {
		return nil, err
	}

	s.record(action, prompt.ID, scope.Actor, from, prompt.Status)
	return s.Prompts.RepresentOne(ctx, scope.Actor, prompt)
}

func (s *ModerationService) record(action string, promptID uint, actor Actor, from, to model.PromptStatus) {
	monitoring.ModerationActions.WithLabelValues(action).Inc()
	logger.Log.Info("prompt moderation",
		zap.String("action", action),
		zap.Uint("prompt_id", promptID),
		zap.Uint("actor_id", actor.UserID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

func (s *ModerationService) Approve(ctx context.Context, scope Scope, promptID uint) (*PromptResponse, error) {
	return s.transition(ctx, scope, promptID, ActionApprove, requireStaff, func(p *model.Prompt) (model.PromptStatus, error) {
		if p.Status == model.StatusApproved {
			return "", util.ErrAlreadyApproved
		}
		return model.StatusApproved, nil
	})
}

func (s *ModerationService) Reject(ctx context.Context, scope Scope, promptID uint) (*PromptResponse, error) {
	return s.transition(ctx, scope, promptID, ActionReject, requireStaff, func(p *model.Prompt) (model.PromptStatus, error) {
		if p.Status == model.StatusRejected {
			return "", util.ErrAlreadyRejected
		}
		return model.StatusRejected, nil
	})
}

// RequestDelete 所有者（或审核员）申请删除，等待审核
func (s *ModerationService) RequestDelete(ctx context.Context, scope Scope, promptID uint) (*PromptResponse, error) {
	return s.transition(ctx, scope, promptID, ActionRequestDelete, requireOwnerOrStaff, func(p *model.Prompt) (model.PromptStatus, error) {
		return model.StatusPendingDeletion, nil
	})
}

// ReviewDelete approve 删除提示词（返回 deleted=true），reject 恢复为已通过
func (s *ModerationService) ReviewDelete(ctx context.Context, scope Scope, promptID uint, action string) (*PromptResponse, bool, error) {
	action = strings.ToLower(strings.TrimSpace(action))

	var prompt *model.Prompt
	var deleted bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompts := s.PromptRepo.WithTx(tx)

		var err error
		prompt, err = prompts.FindVisibleByIDForUpdate(ctx, scope.visibility(), promptID)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}
		if err := requireStaff(scope.Actor, prompt); err != nil {
			return err
		}
		if action != ActionApprove && action != ActionReject {
			return util.ErrInvalidReview
		}
		if prompt.Status != model.StatusPendingDeletion {
			return util.ErrNotPendingDeletion
		}

		if action == ActionApprove {
			deleted = true
			return prompts.Delete(ctx, prompt.ID)
		}
		return prompts.UpdateStatus(ctx, prompt, model.StatusApproved)
	})
	if err != nil {
		return nil, false, err
	}

	if deleted {
		s.record(ActionDeleteApproved, prompt.ID, scope.Actor, model.StatusPendingDeletion, "")
		return nil, true, nil
	}
	s.record(ActionDeleteRejected, prompt.ID, scope.Actor, model.StatusPendingDeletion, prompt.Status)
	resp, err := s.Prompts.RepresentOne(ctx, scope.Actor, prompt)
	return resp, false, err
}
