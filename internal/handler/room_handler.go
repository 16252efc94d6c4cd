// Package handler 提供 HTTP 请求处理器
// 本文件处理聊天室相关的 API 请求
package handler

import (
	"market_chat_server/internal/dto/request"
	"market_chat_server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoomHandler 聊天室请求处理器
type RoomHandler struct {
	chatSvc   service.ChatService
	publisher Publisher
}

// NewRoomHandler 创建聊天室处理器实例
func NewRoomHandler(chatSvc service.ChatService, publisher Publisher) *RoomHandler {
	return &RoomHandler{chatSvc: chatSvc, publisher: publisher}
}

// CreateRoom 买家针对商品发起聊天
// POST /room/createRoom
// 请求体: request.CreateRoomRequest
// 响应: respond.RoomRespond
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.CreateRoom(c.Request.Context(), currentUserId(c), req.ProductId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRoomList 获取聊天室列表
// GET /room/getRoomList
// 响应: []respond.RoomRespond
func (h *RoomHandler) GetRoomList(c *gin.Context) {
	data, err := h.chatSvc.ListRooms(c.Request.Context(), currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CheckParticipant 查询自己是否仍在聊天室
// GET /room/checkParticipant?room_id=xxx
// 响应: bool
func (h *RoomHandler) CheckParticipant(c *gin.Context) {
	var req request.CheckParticipantRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	ok, err := h.chatSvc.IsParticipant(c.Request.Context(), req.RoomId, currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, ok)
}

// LeaveRoom 离开聊天室，系统消息经网关广播给聊天室
// POST /room/leaveRoom
// 请求体: request.LeaveRoomRequest
// 响应: respond.MessageRespond (系统消息)
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	var req request.LeaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	res, err := h.chatSvc.LeaveRoom(c.Request.Context(), currentUserId(c), req.RoomId)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.publisher.Publish(c.Request.Context(), res.Delivery); err != nil {
		zap.L().Warn("publish leave delivery failed", zap.String("room_id", req.RoomId), zap.Error(err))
	}
	HandleSuccess(c, res.Message)
}
