// Package model 定义数据库实体模型
// 本文件定义消息模型，消息写入后只有 IsRead 字段会被修改
package model

import "gorm.io/gorm"

// MessageType 消息类型，封闭枚举
type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"   // 文本消息，Content 必填
	MessageTypeImage  MessageType = "IMAGE"  // 图片消息，ImageUrl 必填
	MessageTypeSystem MessageType = "SYSTEM" // 系统消息（如离开聊天室），只能由服务端生成
)

// Valid 判断是否为已知类型
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeSystem:
		return true
	}
	return false
}

// Message 消息模型
// 对应数据库 message 表，自增 ID 作为聊天室内严格递增的排序键
type Message struct {
	gorm.Model

	// Uuid 消息对外唯一标识，雪花算法生成
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	RoomId string `gorm:"column:room_id;index:idx_room_created,priority:1;type:char(20);not null;comment:聊天室uuid"`

	SendId   string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`
	SendName string `gorm:"column:send_name;type:varchar(20);not null;comment:发送者昵称快照"`

	Type     MessageType `gorm:"column:type;type:varchar(10);not null;comment:消息类型，TEXT/IMAGE/SYSTEM"`
	Content  string      `gorm:"column:content;type:TEXT;comment:消息内容"`
	ImageUrl string      `gorm:"column:image_url;type:varchar(255);comment:图片url"`

	IsRead bool `gorm:"column:is_read;not null;default:false;comment:接收方是否已读"`

	// IsBlocked 命中隐私过滤的消息只对发送者可见
	IsBlocked     bool   `gorm:"column:is_blocked;not null;default:false;comment:是否被隐私过滤拦截"`
	BlockedReason string `gorm:"column:blocked_reason;type:varchar(100);comment:拦截原因"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
