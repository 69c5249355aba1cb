package controller

import (
	"fmt"
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model PromoteAdminRequest
type PromoteAdminRequest struct {
	Username string `json:"username"`
}

// GetCurrentUser godoc
// @Summary 获取当前用户信息
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.UserProfile} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/user [get]
func (c *UserController) GetCurrentUser(ctx *gin.Context) {
	user := util.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, service.NewUserProfile(user))
}

// GetCategories godoc
// @Summary 获取分类列表
// @Description 预置分类与当前用户使用过的分类，去重并排序
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]string} "成功"
// @Router /api/categories [get]
func (c *UserController) GetCategories(ctx *gin.Context) {
	categories, err := c.UserService.Categories(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, categories)
}

// PromoteAdmin godoc
// @Summary 提升为管理员
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body PromoteAdminRequest true "用户名"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "缺少用户名"
// @Failure 403 {object} util.Response "需要管理员权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Failure 409 {object} util.Response "已经是管理员"
// @Router /api/auth/promote-admin [post]
func (c *UserController) PromoteAdmin(ctx *gin.Context) {
	var req PromoteAdminRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.PromoteAdmin(ctx.Request.Context(), actorFrom(ctx), req.Username)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"message": fmt.Sprintf("Successfully promoted user %q to admin.", user.Username),
		"user":    service.NewUserProfile(user),
	})
}

// CompanySSO godoc
// @Summary 企业单点登录地址
// @Description 尚未接入，返回空地址
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/auth/company-sso [get]
func (c *UserController) CompanySSO(ctx *gin.Context) {
	util.Success(ctx, gin.H{"sso_authorization_url": ""})
}
