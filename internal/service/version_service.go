package service

import (
	"context"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionService 提示词历史版本：查看与回滚
type VersionService struct {
	DB          *gorm.DB
	PromptRepo  *repository.PromptRepository
	VersionRepo *repository.VersionRepository
	Prompts     *PromptService
}

func NewVersionService(db *gorm.DB, promptRepo *repository.PromptRepository, versionRepo *repository.VersionRepository, prompts *PromptService) *VersionService {
	return &VersionService{
		DB:          db,
		PromptRepo:  promptRepo,
		VersionRepo: versionRepo,
		Prompts:     prompts,
	}
}

// VersionResponse 历史版本
// swagger:model VersionResponse
type VersionResponse struct {
	ID                uint      `json:"id"`
	Prompt            uint      `json:"prompt"`
	EditedBy          *uint     `json:"edited_by"`
	EditedByUsername  *string   `json:"edited_by_username"`
	VersionCreatedAt  time.Time `json:"version_created_at"`
	Title             string    `json:"title"`
	Description       string    `json:"prompt_description"`
	Text              string    `json:"prompt_text"`
	Guidance          string    `json:"guidance"`
	TaskType          string    `json:"task_type"`
	TaskTypeLabel     string    `json:"task_type_label"`
	OutputFormat      string    `json:"output_format"`
	OutputFormatLabel string    `json:"output_format_label"`
	Category          string    `json:"category"`
}

func newVersionResponse(v model.PromptVersion) VersionResponse {
	var editor *string
	if v.EditedBy != nil {
		name := v.EditedBy.Username
		editor = &name
	}
	return VersionResponse{
		ID:                v.ID,
		Prompt:            v.PromptID,
		EditedBy:          v.EditedByID,
		EditedByUsername:  editor,
		VersionCreatedAt:  v.CreatedAt,
		Title:             v.Title,
		Description:       v.Description,
		Text:              v.Text,
		Guidance:          v.Guidance,
		TaskType:          v.TaskType,
		TaskTypeLabel:     model.TaskTypeLabel(v.TaskType),
		OutputFormat:      v.OutputFormat,
		OutputFormatLabel: model.OutputFormatLabel(v.OutputFormat),
		Category:          v.Category,
	}
}

// snapshotIfApproved 只有已通过的提示词在修改前需要存档
func snapshotIfApproved(ctx context.Context, versions *repository.VersionRepository, p *model.Prompt, editorID uint) (bool, error) {
	if p.Status != model.StatusApproved {
		return false, nil
	}
	if err := versions.Create(ctx, model.NewPromptVersion(p, editorID)); err != nil {
		return false, err
	}
	return true, nil
}

// History 仅所有者与审核员可见，最新的在前
func (s *VersionService) History(ctx context.Context, scope Scope, promptID uint) ([]VersionResponse, error) {
	prompt, err := s.PromptRepo.FindVisibleByID(ctx, scope.visibility(), promptID)
	if err != nil {
		return nil, translateNotFound(err, util.ErrPromptNotFound)
	}
	if !scope.Actor.IsStaff && !prompt.OwnedBy(scope.Actor.UserID) {
		return nil, util.ErrHistoryForbidden
	}

	versions, err := s.VersionRepo.ListByPrompt(ctx, prompt.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]VersionResponse, len(versions))
	for i, v := range versions {
		responses[i] = newVersionResponse(v)
	}
	return responses, nil
}

// Revert 用历史版本覆盖当前内容；当前内容若已通过会先存档
func (s *VersionService) Revert(ctx context.Context, scope Scope, promptID, versionID uint) (*PromptResponse, error) {
	var reverted *model.Prompt
	var archived bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompts := s.PromptRepo.WithTx(tx)
		versions := s.VersionRepo.WithTx(tx)

		prompt, err := prompts.FindVisibleByIDForUpdate(ctx, scope.visibility(), promptID)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}
		if !canWrite(scope.Actor, prompt) {
			return util.ErrNotOwner
		}

		version, err := versions.FindByID(ctx, versionID)
		if err != nil {
			return translateNotFound(err, util.ErrVersionNotFound)
		}
		if version.PromptID != prompt.ID {
			return util.ErrForeignVersion
		}

		archived, err = snapshotIfApproved(ctx, versions, prompt, scope.Actor.UserID)
		if err != nil {
			return err
		}

		version.ApplyTo(prompt)
		if !scope.Actor.IsStaff {
			prompt.Status = model.StatusPending
		}
		if err := prompts.Save(ctx, prompt); err != nil {
			return err
		}
		reverted = prompt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("prompt reverted",
		zap.Uint("prompt_id", reverted.ID),
		zap.Uint("version_id", versionID),
		zap.Uint("user_id", scope.Actor.UserID),
		zap.Bool("archived", archived),
	)
	return s.Prompts.RepresentOne(ctx, scope.Actor, reverted)
}
