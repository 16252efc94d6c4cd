// Package websocket 实现聊天网关
// hub.go
// 核心职责：维护本实例上的连接与聊天室订阅关系，按 Delivery 推送
// 网关只看 Delivery 的推送范围，不检查消息内容
package websocket

import (
	"sync"

	"market_chat_server/internal/service/chat"

	"go.uber.org/zap"
)

// Hub 本实例的连接表
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[*UserConn]struct{} // 用户 -> 连接，同一用户可多端登录
	rooms map[string]map[*UserConn]struct{} // 聊天室 -> 订阅的连接
}

// NewHub 创建连接表
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[*UserConn]struct{}),
		rooms: make(map[string]map[*UserConn]struct{}),
	}
}

// Register 登记连接
func (h *Hub) Register(c *UserConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.users[c.UserId]
	if !ok {
		set = make(map[*UserConn]struct{})
		h.users[c.UserId] = set
	}
	set[c] = struct{}{}
}

// Unregister 移除连接及其全部订阅，并关闭发送通道
// 只能由连接自己的读协程在退出时调用一次
func (h *Hub) Unregister(c *UserConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.users[c.UserId]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.users, c.UserId)
		}
	}
	for roomId := range c.rooms {
		h.removeFromRoom(roomId, c)
	}
	c.rooms = nil
	close(c.send)
}

// Subscribe 订阅聊天室广播
func (h *Hub) Subscribe(roomId string, c *UserConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[roomId]
	if !ok {
		set = make(map[*UserConn]struct{})
		h.rooms[roomId] = set
	}
	set[c] = struct{}{}
	c.rooms[roomId] = struct{}{}
}

// Unsubscribe 取消订阅，返回之前是否已订阅
func (h *Hub) Unsubscribe(roomId string, c *UserConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.rooms[roomId]; !ok {
		return false
	}
	delete(c.rooms, roomId)
	h.removeFromRoom(roomId, c)
	return true
}

func (h *Hub) removeFromRoom(roomId string, c *UserConn) {
	set, ok := h.rooms[roomId]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, roomId)
	}
}

// Dispatch 按推送范围投递到本实例的连接
//   - AudienceRoom: 订阅了该聊天室的所有连接
//   - AudienceSender: 发送者自己的所有连接
func (h *Hub) Dispatch(d chat.Delivery) {
	frame := encodeFrame(OutboundFrame{
		Type:   string(d.Event),
		RoomId: d.RoomId,
		Data:   d.Payload,
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	var targets map[*UserConn]struct{}
	switch d.Audience {
	case chat.AudienceRoom:
		targets = h.rooms[d.RoomId]
	case chat.AudienceSender:
		targets = h.users[d.UserId]
	default:
		zap.L().Warn("unknown delivery audience", zap.String("audience", string(d.Audience)))
		return
	}
	for c := range targets {
		c.enqueue(frame)
	}
}

// Online 本实例上该用户的连接数
func (h *Hub) Online(userId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userId])
}

// Subscribers 本实例上订阅该聊天室的连接数
func (h *Hub) Subscribers(roomId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomId])
}
