package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// ParticipantRole 参与者在聊天室中的角色
type ParticipantRole string

const (
	RoleBuyer  ParticipantRole = "BUYER"
	RoleSeller ParticipantRole = "SELLER"
)

// Participant 聊天室成员模型
// 对应数据库 room_participant 表，每个聊天室恰好两行，随聊天室一起创建
// 成员只会从 ACTIVE 变为 LEFT，不删除也不恢复
type Participant struct {
	gorm.Model

	RoomId string          `gorm:"column:room_id;uniqueIndex:uk_room_user,priority:1;type:char(20);not null;comment:聊天室uuid"`
	UserId string          `gorm:"column:user_id;uniqueIndex:uk_room_user,priority:2;index;type:char(20);not null;comment:用户uuid"`
	Role   ParticipantRole `gorm:"column:role;type:varchar(10);not null;comment:角色，BUYER/SELLER"`

	// 加入时的昵称与头像快照
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称快照"`
	Avatar   string `gorm:"column:avatar;type:varchar(255);comment:头像快照"`

	IsActive bool         `gorm:"column:is_active;not null;default:true;comment:是否仍在聊天室"`
	LeftAt   sql.NullTime `gorm:"column:left_at;comment:离开时间"`

	// LastMessage 会话列表中显示的最新消息摘要，被拦截的消息显示占位文案
	LastMessage   string       `gorm:"column:last_message;type:TEXT;comment:最新的消息"`
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;comment:最近消息时间"`
}

// TableName 指定表名
func (Participant) TableName() string {
	return "room_participant"
}
