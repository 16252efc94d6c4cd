package respond

import "time"

// CounterpartRespond 对方的资料快照
type CounterpartRespond struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Left     bool   `json:"left"`
}

// RoomRespond 聊天室信息
// 使用位置:
//   - internal/service/chat/engine.go: CreateRoom, ListRooms
type RoomRespond struct {
	RoomId        string             `json:"room_id"`
	ProductId     string             `json:"product_id"`
	ProductTitle  string             `json:"product_title"`
	ProductPrice  int64              `json:"product_price"`
	ProductImage  string             `json:"product_image"`
	BuyerId       string             `json:"buyer_id"`
	SellerId      string             `json:"seller_id"`
	Role          string             `json:"role"`
	Left          bool               `json:"left"`
	Counterpart   CounterpartRespond `json:"counterpart"`
	LastMessage   string             `json:"last_message"`
	LastMessageAt *time.Time         `json:"last_message_at,omitempty"`
	UnreadCount   int64              `json:"unread_count"`
	CreatedAt     time.Time          `json:"created_at"`
}
