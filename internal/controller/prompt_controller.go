package controller

import (
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PromptController struct {
	PromptService  *service.PromptService
	VersionService *service.VersionService
}

func NewPromptController(promptService *service.PromptService, versionService *service.VersionService) *PromptController {
	return &PromptController{
		PromptService:  promptService,
		VersionService: versionService,
	}
}

// @Summary 获取提示词列表
// @Description 普通用户只能看到已通过的提示词，mine=1 时附带自己的全部提示词；审核员可见全部
// @Tags 提示词
// @Produce json
// @Security BearerAuth
// @Param category query string false "分类"
// @Param task_type query string false "任务类型"
// @Param output_format query string false "输出格式"
// @Param status query string false "状态" Enums(pending, approved, rejected, pending_deletion)
// @Param search query string false "搜索标题、描述与正文"
// @Param mine query string false "附带自己的提示词 (1/true)"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse{list=[]service.PromptResponse}}
// @Router /api/prompts [get]
func (c *PromptController) List(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	query := service.PromptListQuery{
		Category:     ctx.Query("category"),
		TaskType:     ctx.Query("task_type"),
		OutputFormat: ctx.Query("output_format"),
		Status:       ctx.Query("status"),
		Search:       ctx.Query("search"),
		Page:         page,
		Limit:        limit,
	}

	result, err := c.PromptService.List(ctx.Request.Context(), scopeFrom(ctx), query)
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

// @Summary 创建提示词
// @Description 新建的提示词状态为待审核
// @Tags 提示词
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param prompt body service.PromptInput true "提示词内容"
// @Success 201 {object} util.Response{data=service.PromptResponse}
// @Failure 400 {object} util.Response
// @Router /api/prompts [post]
func (c *PromptController) Create(ctx *gin.Context) {
	var req service.PromptInput
	if !util.BindJSON(ctx, &req) {
		return
	}

	prompt, err := c.PromptService.Create(ctx.Request.Context(), actorFrom(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, prompt)
}

// @Summary 获取提示词详情
// @Tags 提示词
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Param mine query string false "附带自己的提示词 (1/true)"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id} [get]
func (c *PromptController) Get(ctx *gin.Context) {
	prompt, err := c.PromptService.Get(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 更新提示词
// @Description PUT 需要提供全部必填字段，PATCH 只更新提供的字段；编辑已通过的提示词会保存历史版本
// @Tags 提示词
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Param prompt body service.PromptInput true "提示词内容"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id} [put]
// @Router /api/prompts/{id} [patch]
func (c *PromptController) Update(ctx *gin.Context) {
	var req service.PromptInput
	if !util.BindJSON(ctx, &req) {
		return
	}

	partial := ctx.Request.Method == "PATCH"
	prompt, err := c.PromptService.Update(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")), req, partial)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}

// @Summary 删除提示词
// @Description 同时删除历史版本、投票与收藏
// @Tags 提示词
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 204
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id} [delete]
func (c *PromptController) Delete(ctx *gin.Context) {
	if err := c.PromptService.Delete(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.NoContent(ctx)
}

// @Summary 获取提示词历史版本
// @Description 仅所有者与审核员可查看
// @Tags 提示词
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Success 200 {object} util.Response{data=[]service.VersionResponse}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/history [get]
func (c *PromptController) History(ctx *gin.Context) {
	versions, err := c.VersionService.History(ctx.Request.Context(), scopeFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, versions)
}

// @Summary 回滚到历史版本
// @Tags 提示词
// @Produce json
// @Security BearerAuth
// @Param id path int true "提示词ID"
// @Param versionId path int true "版本ID"
// @Success 200 {object} util.Response{data=service.PromptResponse}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/prompts/{id}/revert/{versionId} [post]
func (c *PromptController) Revert(ctx *gin.Context) {
	prompt, err := c.VersionService.Revert(ctx.Request.Context(), scopeFrom(ctx),
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("versionId")),
	)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, prompt)
}
