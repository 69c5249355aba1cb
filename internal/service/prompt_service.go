package service

import (
	"context"
	"encoding/json"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/logger"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PromptService struct {
	DB           *gorm.DB
	PromptRepo   *repository.PromptRepository
	VersionRepo  *repository.VersionRepository
	VoteRepo     *repository.VoteRepository
	BookmarkRepo *repository.BookmarkRepository
}

func NewPromptService(
	db *gorm.DB,
	promptRepo *repository.PromptRepository,
	versionRepo *repository.VersionRepository,
	voteRepo *repository.VoteRepository,
	bookmarkRepo *repository.BookmarkRepository,
) *PromptService {
	return &PromptService{
		DB:           db,
		PromptRepo:   promptRepo,
		VersionRepo:  versionRepo,
		VoteRepo:     voteRepo,
		BookmarkRepo: bookmarkRepo,
	}
}

// OptionalString 可为 null 的文本字段：Set 表示请求中出现过，显式 null 时 Value 为空
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null, o.Value = true, ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// PromptInput 创建/更新请求，指针字段区分"未提供"与"空字符串"
type PromptInput struct {
	Title        *string        `json:"title" binding:"omitempty,max=255"`
	Description  OptionalString `json:"prompt_description" swaggertype:"string"`
	Text         *string        `json:"prompt_text"`
	Guidance     OptionalString `json:"guidance" swaggertype:"string"`
	TaskType     *string        `json:"task_type" binding:"omitempty,tasktype"`
	OutputFormat *string        `json:"output_format" binding:"omitempty,outputformat"`
	Category     *string        `json:"category" binding:"omitempty,max=50"`

	// 服务端计算字段，请求中出现即拒绝
	ID           json.RawMessage `json:"id" swaggerignore:"true"`
	User         json.RawMessage `json:"user" swaggerignore:"true"`
	UserUsername json.RawMessage `json:"user_username" swaggerignore:"true"`
	Status       json.RawMessage `json:"status" swaggerignore:"true"`
	Vote         json.RawMessage `json:"vote" swaggerignore:"true"`
	VoteCount    json.RawMessage `json:"vote_count" swaggerignore:"true"`
	LikeCount    json.RawMessage `json:"like_count" swaggerignore:"true"`
	DislikeCount json.RawMessage `json:"dislike_count" swaggerignore:"true"`
	UserVote     json.RawMessage `json:"user_vote" swaggerignore:"true"`
	IsBookmarked json.RawMessage `json:"is_bookmarked" swaggerignore:"true"`
	CreatedAt    json.RawMessage `json:"created_at" swaggerignore:"true"`
	UpdatedAt    json.RawMessage `json:"updated_at" swaggerignore:"true"`
}

func (in *PromptInput) readOnlyFields() []string {
	fields := []struct {
		name string
		raw  json.RawMessage
	}{
		{"id", in.ID},
		{"user", in.User},
		{"user_username", in.UserUsername},
		{"status", in.Status},
		{"vote", in.Vote},
		{"vote_count", in.VoteCount},
		{"like_count", in.LikeCount},
		{"dislike_count", in.DislikeCount},
		{"user_vote", in.UserVote},
		{"is_bookmarked", in.IsBookmarked},
		{"created_at", in.CreatedAt},
		{"updated_at", in.UpdatedAt},
	}
	var present []string
	for _, f := range fields {
		if len(f.raw) > 0 {
			present = append(present, f.name)
		}
	}
	return present
}

// Validate partial=true 对应 PATCH，只校验提供了的字段
func (in *PromptInput) Validate(partial bool) error {
	if fields := in.readOnlyFields(); len(fields) > 0 {
		return util.Validationf("read-only fields cannot be set: %s", strings.Join(fields, ", "))
	}

	required := []struct {
		name  string
		value *string
	}{
		{"title", in.Title},
		{"prompt_text", in.Text},
		{"task_type", in.TaskType},
		{"output_format", in.OutputFormat},
		{"category", in.Category},
	}
	var missing []string
	for _, f := range required {
		if f.value == nil {
			if !partial {
				missing = append(missing, f.name)
			}
			continue
		}
		if strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return util.Validationf("this field is required and may not be blank: %s", strings.Join(missing, ", "))
	}

	if in.Title != nil && utf8.RuneCountInString(*in.Title) > 255 {
		return util.Validationf("title must be at most 255 characters")
	}
	if in.Category != nil && utf8.RuneCountInString(*in.Category) > 50 {
		return util.Validationf("category must be at most 50 characters")
	}
	if in.TaskType != nil && !model.IsValidTaskType(*in.TaskType) {
		return util.Validationf("%q is not a valid task_type", *in.TaskType)
	}
	if in.OutputFormat != nil && !model.IsValidOutputFormat(*in.OutputFormat) {
		return util.Validationf("%q is not a valid output_format", *in.OutputFormat)
	}
	return nil
}

func (in *PromptInput) applyTo(p *model.Prompt) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	// 显式 null 清空字段
	if in.Description.Set {
		p.Description = in.Description.Value
	}
	if in.Text != nil {
		p.Text = *in.Text
	}
	if in.Guidance.Set {
		p.Guidance = in.Guidance.Value
	}
	if in.TaskType != nil {
		p.TaskType = *in.TaskType
	}
	if in.OutputFormat != nil {
		p.OutputFormat = *in.OutputFormat
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
}

type PromptResponse struct {
	ID           uint               `json:"id"`
	User         *uint              `json:"user"`
	UserUsername *string            `json:"user_username"`
	Title        string             `json:"title"`
	Description  string             `json:"prompt_description"`
	Text         string             `json:"prompt_text"`
	Guidance     string             `json:"guidance"`
	TaskType     string             `json:"task_type"`
	OutputFormat string             `json:"output_format"`
	Category     string             `json:"category"`
	Status       model.PromptStatus `json:"status"`
	Vote         int                `json:"vote"`
	VoteCount    int                `json:"vote_count"`
	LikeCount    int                `json:"like_count"`
	DislikeCount int                `json:"dislike_count"`
	UserVote     int                `json:"user_vote"`
	IsBookmarked bool               `json:"is_bookmarked"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type PromptListQuery struct {
	Category     string
	TaskType     string
	OutputFormat string
	Status       string
	Search       string
	Page         int
	Limit        int
}

// PromptPage 分页结果，Page / Limit 为实际生效的值
type PromptPage struct {
	List  []PromptResponse
	Total int64
	Page  int
	Limit int
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = util.DefaultPageSize
	}
	if limit > util.MaxPageSize {
		limit = util.MaxPageSize
	}
	return page, limit
}

// Represent 组装响应，附带当前用户的投票与收藏状态
func (s *PromptService) Represent(ctx context.Context, actor Actor, prompts []model.Prompt) ([]PromptResponse, error) {
	ids := make([]uint, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}

	userVotes, err := s.VoteRepo.ValuesByUser(ctx, actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	bookmarked, err := s.BookmarkRepo.BookmarkedSet(ctx, actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	sums, err := s.VoteRepo.SumByPrompts(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]PromptResponse, len(prompts))
	for i, p := range prompts {
		var username *string
		if p.User != nil {
			name := p.User.Username
			username = &name
		}
		responses[i] = PromptResponse{
			ID:           p.ID,
			User:         p.UserID,
			UserUsername: username,
			Title:        p.Title,
			Description:  p.Description,
			Text:         p.Text,
			Guidance:     p.Guidance,
			TaskType:     p.TaskType,
			OutputFormat: p.OutputFormat,
			Category:     p.Category,
			Status:       p.Status,
			Vote:         p.Vote,
			VoteCount:    sums[p.ID],
			LikeCount:    p.LikeCount,
			DislikeCount: p.DislikeCount,
			UserVote:     userVotes[p.ID],
			IsBookmarked: bookmarked[p.ID],
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *PromptService) RepresentOne(ctx context.Context, actor Actor, p *model.Prompt) (*PromptResponse, error) {
	responses, err := s.Represent(ctx, actor, []model.Prompt{*p})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *PromptService) List(ctx context.Context, scope Scope, q PromptListQuery) (*PromptPage, error) {
	if q.Status != "" && !model.PromptStatus(q.Status).Valid() {
		return nil, util.Validationf("%q is not a valid status", q.Status)
	}
	if q.TaskType != "" && !model.IsValidTaskType(q.TaskType) {
		return nil, util.Validationf("%q is not a valid task_type", q.TaskType)
	}
	if q.OutputFormat != "" && !model.IsValidOutputFormat(q.OutputFormat) {
		return nil, util.Validationf("%q is not a valid output_format", q.OutputFormat)
	}

	page, limit := normalizePage(q.Page, q.Limit)
	prompts, total, err := s.PromptRepo.FindWithPagination(ctx, scope.visibility(), repository.PromptFilter{
		Category:     q.Category,
		TaskType:     q.TaskType,
		OutputFormat: q.OutputFormat,
		Status:       q.Status,
		Search:       q.Search,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	responses, err := s.Represent(ctx, scope.Actor, prompts)
	if err != nil {
		return nil, err
	}
	return &PromptPage{List: responses, Total: total, Page: page, Limit: limit}, nil
}

func (s *PromptService) Get(ctx context.Context, scope Scope, id uint) (*PromptResponse, error) {
	prompt, err := s.PromptRepo.FindVisibleByID(ctx, scope.visibility(), id)
	if err != nil {
		return nil, translateNotFound(err, util.ErrPromptNotFound)
	}
	return s.RepresentOne(ctx, scope.Actor, prompt)
}

// Create 状态固定为 pending，聚合字段归零
func (s *PromptService) Create(ctx context.Context, actor Actor, in PromptInput) (*PromptResponse, error) {
	if !actor.Authenticated() {
		return nil, util.ErrUnauthorized
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	ownerID := actor.UserID
	prompt := &model.Prompt{
		UserID: &ownerID,
		Status: model.StatusPending,
	}
	in.applyTo(prompt)

	if err := s.PromptRepo.Create(ctx, prompt); err != nil {
		return nil, err
	}
	prompt.User = &model.User{BaseModel: model.BaseModel{ID: actor.UserID}, Username: actor.Username}

	logger.Log.Info("prompt created",
		zap.Uint("prompt_id", prompt.ID),
		zap.Uint("user_id", actor.UserID),
	)
	return s.RepresentOne(ctx, actor, prompt)
}

// Update 编辑已通过的提示词会先存档旧版本；非审核员编辑后回到待审核
func (s *PromptService) Update(ctx context.Context, scope Scope, id uint, in PromptInput, partial bool) (*PromptResponse, error) {
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	var updated *model.Prompt
	var archived bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompts := s.PromptRepo.WithTx(tx)
		prompt, err := prompts.FindVisibleByIDForUpdate(ctx, scope.visibility(), id)
		if err != nil {
			return translateNotFound(err, util.ErrPromptNotFound)
		}
		if !canWrite(scope.Actor, prompt) {
			return util.ErrNotOwner
		}

		archived, err = snapshotIfApproved(ctx, s.VersionRepo.WithTx(tx), prompt, scope.Actor.UserID)
		if err != nil {
			return err
		}

		in.applyTo(prompt)
		if !scope.Actor.IsStaff {
			prompt.Status = model.StatusPending
		}
		if err := prompts.Save(ctx, prompt); err != nil {
			return err
		}
		updated = prompt
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("prompt updated",
		zap.Uint("prompt_id", updated.ID),
		zap.Uint("user_id", scope.Actor.UserID),
		zap.Bool("archived", archived),
		zap.String("status", string(updated.Status)),
	)
	return s.RepresentOne(ctx, scope.Actor, updated)
}

func (s *PromptService) Delete(ctx context.Context, scope Scope, id uint) error {
	prompt, err := s.PromptRepo.FindVisibleByID(ctx, scope.visibility(), id)
	if err != nil {
		return translateNotFound(err, util.ErrPromptNotFound)
	}
	if !canWrite(scope.Actor, prompt) {
		return util.ErrNotOwner
	}
	if err := s.PromptRepo.Delete(ctx, prompt.ID); err != nil {
		return err
	}

	logger.Log.Info("prompt deleted",
		zap.Uint("prompt_id", prompt.ID),
		zap.Uint("user_id", scope.Actor.UserID),
	)
	return nil
}
