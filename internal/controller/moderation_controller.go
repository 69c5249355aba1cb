package controller

import (
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModerationController struct {
	ModerationService *service.ModerationService
}

func NewModerationController(moderationService *service.ModerationService) *ModerationController {
	return &ModerationController{ModerationService: moderationService}
}

// ReviewDeleteRequest 删除审核
// swagger:model ReviewDeleteRequest
type ReviewDeleteRequest struct {
	Action string `json:"action" example:"approve"`
}

// @Summary 审核通过
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/prompts/{id}/approve [post]
func (c *ModerationController) Approve(ctx *gin.Context) {
	prompt, err := c.ModerationService.Approve(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 审核驳回
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/prompts/{id}/reject [post]
func (c *ModerationController) Reject(ctx *gin.Context) {
	prompt, err := c.ModerationService.Reject(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 申请删除
// @Description 所有者申请删除，提示词进入待删除状态等待审核
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 202 {object} util.Response{data=service.PromptResponse}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/request-delete [post]
func (c *ModerationController) RequestDelete(ctx *gin.Context) {
	prompt, err := c.ModerationService.RequestDelete(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Accepted(ctx, prompt)
}

// @Summary 审核删除申请
// @Description action=approve 删除提示词（204），action=reject 恢复为已通过
// @Tags 审核
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Param review body ReviewDeleteRequest true "审核结果"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Success 204
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/prompts/{id}/review-delete [post]
func (c *ModerationController) ReviewDelete(ctx *gin.Context) {
	var req ReviewDeleteRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	prompt, deleted, err := c.ModerationService.ReviewDelete(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")), req.Action)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if deleted {
		util.NoContent(ctx)
		return
	}

	util.Success(ctx, prompt)
}
