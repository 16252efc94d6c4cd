package respond

import "time"

// MessageRespond 单条消息
// Uuid 以字符串返回，避免 JavaScript 丢失雪花 ID 精度
type MessageRespond struct {
	Uuid          string    `json:"uuid"`
	RoomId        string    `json:"room_id"`
	SendId        string    `json:"send_id"`
	SendName      string    `json:"send_name"`
	Type          string    `json:"type"`
	Content       string    `json:"content"`
	ImageUrl      string    `json:"image_url,omitempty"`
	IsRead        bool      `json:"is_read"`
	IsBlocked     bool      `json:"is_blocked"`
	BlockedReason string    `json:"blocked_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessagePageRespond 聊天记录分页，Messages 按时间正序
// Total 与 HasNext 基于过滤前的数据计算，页内条数可能少于 Size
type MessagePageRespond struct {
	Messages []MessageRespond `json:"messages"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Total    int64            `json:"total"`
	HasNext  bool             `json:"has_next"`
}
