// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的请求
package handler

import "github.com/gin-gonic/gin"

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	ws WsServer
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(ws WsServer) *WsHandler {
	return &WsHandler{ws: ws}
}

// WsLogin 升级为 WebSocket 连接
// GET /wss?token=xxx
// 认证在网关内完成，失败时以 error 帧返回，因此该路由不挂 JWTAuth
func (h *WsHandler) WsLogin(c *gin.Context) {
	h.ws.ServeWS(c)
}
