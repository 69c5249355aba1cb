package app

import (
	"prompt_library_backend/docs"
	"prompt_library_backend/internal/middleware"
	"prompt_library_backend/internal/model"
	"prompt_library_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.services.auth))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerPromptRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/token", c.auth.Login)
		public.POST("/token/refresh", c.auth.Refresh)
		public.GET("/auth/company-sso", c.user.CompanySSO)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/token/revoke", c.auth.Revoke)
	group.GET("/auth/user", c.user.GetCurrentUser)
	group.GET("/categories", c.user.GetCategories)
	group.GET("/bookmarks", c.engagement.ListBookmarks)
	group.POST("/auth/promote-admin", middleware.RoleMiddleware(model.RoleAdmin), c.user.PromoteAdmin)
}

func (a *App) registerPromptRoutes(group *gin.RouterGroup, c *controllers) {
	prompts := group.Group("/prompts")
	{
		prompts.GET("", c.prompt.List)
		prompts.POST("", c.prompt.Create)
		prompts.GET("/:id", c.prompt.Get)
		prompts.PUT("/:id", c.prompt.Update)
		prompts.PATCH("/:id", c.prompt.Update)
		prompts.DELETE("/:id", c.prompt.Delete)

		prompts.GET("/:id/history", c.prompt.History)
		prompts.POST("/:id/revert/:versionId", c.prompt.Revert)

		prompts.POST("/:id/upvote", c.engagement.Upvote)
		prompts.POST("/:id/downvote", c.engagement.Downvote)
		prompts.POST("/:id/bookmark", c.engagement.ToggleBookmark)

		prompts.POST("/:id/request-delete", c.moderation.RequestDelete)
		prompts.POST("/:id/request_delete", c.moderation.RequestDelete)

		// 审核员接口
		moderator := prompts.Group("")
		moderator.Use(middleware.RoleMiddleware(model.RoleAdmin))
		{
			moderator.POST("/:id/approve", c.moderation.Approve)
			moderator.POST("/:id/reject", c.moderation.Reject)
			moderator.POST("/:id/review-delete", c.moderation.ReviewDelete)
		}
	}
}
