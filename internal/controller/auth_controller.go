package controller

import (
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// swagger:model RefreshRequest
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// swagger:model RevokeRequest
type RevokeRequest struct {
	Refresh string `json:"refresh"`
}

// Register godoc
// @Summary 注册新用户
// @Description 使用用户名与密码注册，邮箱可选
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名已被占用"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login godoc
// @Summary 获取令牌
// @Description 验证用户名密码并返回访问令牌与刷新令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=service.TokenPair} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/token [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	tokens, err := c.AuthService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, tokens)
}

// Refresh godoc
// @Summary 刷新访问令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RefreshRequest true "刷新令牌"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "令牌无效或已过期"
// @Router /api/token/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	var req RefreshRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	access, err := c.AuthService.Refresh(ctx.Request.Context(), req.Refresh)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"access": access})
}

// Revoke godoc
// @Summary 注销
// @Description 吊销当前访问令牌，可同时吊销刷新令牌；需要启用 Redis
// @Tags 认证
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body RevokeRequest false "刷新令牌"
// @Success 204
// @Failure 401 {object} util.Response "令牌无效"
// @Failure 503 {object} util.Response "未启用 Redis"
// @Router /api/token/revoke [post]
func (c *AuthController) Revoke(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RevokeRequest
	if ctx.Request.ContentLength > 0 && !util.BindJSON(ctx, &req) {
		return
	}

	if err := c.AuthService.Revoke(ctx.Request.Context(), claims, req.Refresh); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.NoContent(ctx)
}
