// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"context"

	"market_chat_server/internal/service"
	"market_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
)

// Publisher 把引擎结果推送到 WebSocket 网关
type Publisher interface {
	Publish(ctx context.Context, d chat.Delivery) error
}

// WsServer WebSocket 连接入口
type WsServer interface {
	ServeWS(c *gin.Context)
}

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Room    *RoomHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合实例
// gateway: 同时负责推送和连接升级
func NewHandlers(svc *service.Services, publisher Publisher, ws WsServer) *Handlers {
	return &Handlers{
		Room:    NewRoomHandler(svc.Chat, publisher),
		Message: NewMessageHandler(svc.Chat, publisher),
		Ws:      NewWsHandler(ws),
	}
}

// currentUserId 读取 JWTAuth 中间件写入的用户 ID
func currentUserId(c *gin.Context) string {
	return c.GetString("user_id")
}
