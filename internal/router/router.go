// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"market_chat_server/internal/handler"
	"market_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合实例
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	// 公开路由：健康检查与 WebSocket (网关自行完成 Token 校验)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	rt.RegisterWebSocketRoutes(r.Group(""))

	// 需要认证的路由
	authed := r.Group("")
	authed.Use(middleware.JWTAuth())
	rt.RegisterRoomRoutes(authed)
	rt.RegisterMessageRoutes(authed)
}
