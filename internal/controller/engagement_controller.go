package controller

import (
	"prompt_library_backend/internal/model"
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EngagementController 投票与收藏
type EngagementController struct {
	VoteService     *service.VoteService
	BookmarkService *service.BookmarkService
}

func NewEngagementController(voteService *service.VoteService, bookmarkService *service.BookmarkService) *EngagementController {
	return &EngagementController{
		VoteService:     voteService,
		BookmarkService: bookmarkService,
	}
}

func (c *EngagementController) vote(ctx *gin.Context, value int) {
	prompt, err := c.VoteService.CastVote(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")), value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 点赞
// @Description 再次点赞即取消，已点踩则改为点赞
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/upvote [post]
func (c *EngagementController) Upvote(ctx *gin.Context) {
	c.vote(ctx, model.VoteUp)
}

// @Summary 点踩
// @Description 再次点踩即取消，已点赞则改为点踩
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/downvote [post]
func (c *EngagementController) Downvote(ctx *gin.Context) {
	c.vote(ctx, model.VoteDown)
}

// @Summary 收藏/取消收藏
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/bookmark [post]
func (c *EngagementController) ToggleBookmark(ctx *gin.Context) {
	prompt, err := c.BookmarkService.Toggle(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 我的收藏
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]service.PromptResponse}}
// @Router /api/bookmarks [get]
func (c *EngagementController) ListBookmarks(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	result, err := c.BookmarkService.List(ctx.Request.Context(), actorFrom(ctx), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  result.List,
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}
