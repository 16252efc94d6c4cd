package model

import "gorm.io/gorm"

// UserInfo 用户资料只读模型
// 用户注册与资料维护由身份服务负责，聊天服务只读取昵称和头像用于快照
type UserInfo struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`
	Avatar   string `gorm:"column:avatar;type:varchar(255);comment:头像"`
	Status   int8   `gorm:"column:status;not null;default:0;comment:状态，0.正常，1.禁用"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
