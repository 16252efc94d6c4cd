// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"market_chat_server/internal/dto/request"
	"market_chat_server/internal/model"
	"market_chat_server/internal/service"
	"market_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	chatSvc   service.ChatService
	publisher Publisher
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(chatSvc service.ChatService, publisher Publisher) *MessageHandler {
	return &MessageHandler{chatSvc: chatSvc, publisher: publisher}
}

// GetMessageList 分页获取聊天记录，第一页同时把聊天室标记为已读
// GET /message/getMessageList?room_id=xxx&page=1&size=30
// 响应: respond.MessagePageRespond
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.GetMessages(c.Request.Context(), currentUserId(c), req.RoomId, req.Page, req.Size)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 通过 HTTP 发送消息，推送范围与 WebSocket 发送一致
// POST /message/sendMessage
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	res, err := h.chatSvc.SendMessage(c.Request.Context(), chat.SendMessageCommand{
		SenderId: currentUserId(c),
		RoomId:   req.RoomId,
		Type:     model.MessageType(req.Type),
		Content:  req.Content,
		ImageUrl: req.ImageUrl,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.publisher.Publish(c.Request.Context(), res.Delivery); err != nil {
		zap.L().Warn("publish message delivery failed", zap.String("room_id", req.RoomId), zap.Error(err))
	}
	HandleSuccess(c, res.Message)
}
