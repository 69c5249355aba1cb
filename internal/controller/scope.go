package controller

import (
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// scopeFrom 当前用户 + mine 查询参数
func scopeFrom(ctx *gin.Context) service.Scope {
	return service.Scope{
		Actor: service.ActorFromUser(util.GetCurrentUser(ctx)),
		Mine:  util.ParseBoolFlag(ctx.Query("mine")),
	}
}

func actorFrom(ctx *gin.Context) service.Actor {
	return service.ActorFromUser(util.GetCurrentUser(ctx))
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultPageSize)))
	return page, limit
}
