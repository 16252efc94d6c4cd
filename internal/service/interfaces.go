// Package service 定义业务层接口
// 本文件定义 Handler 层和网关调用的 Service 接口
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"

	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/service/chat"
)

// ChatService 聊天业务接口
// 处理聊天室创建、列表、消息收发和离开等功能
type ChatService interface {
	// CreateRoom 买家针对商品发起聊天，同一商品同一买家重复调用返回同一聊天室
	CreateRoom(ctx context.Context, buyerId, productId string) (*respond.RoomRespond, error)
	// ListRooms 获取用户仍在的聊天室列表
	ListRooms(ctx context.Context, userId string) ([]respond.RoomRespond, error)
	// IsParticipant 判断用户是否为聊天室在籍成员
	IsParticipant(ctx context.Context, roomId, userId string) (bool, error)
	// SendMessage 发送消息，结果中的 Delivery 决定推送范围
	SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (*chat.SendResult, error)
	// GetMessages 分页获取聊天记录
	GetMessages(ctx context.Context, userId, roomId string, page, size int) (*respond.MessagePageRespond, error)
	// LeaveRoom 离开聊天室
	LeaveRoom(ctx context.Context, userId, roomId string) (*chat.LeaveResult, error)
}

var _ ChatService = (*chat.Engine)(nil)
