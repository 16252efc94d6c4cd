// Package model 定义数据库实体模型
// 本文件定义聊天室模型：一个商品、一个买家、一个卖家对应唯一的聊天室
package model

import "gorm.io/gorm"

// Room 聊天室模型
// 对应数据库 room 表，创建后不删除
type Room struct {
	gorm.Model

	// Uuid 聊天室对外唯一标识
	// 格式：R + 日期 + 随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:聊天室uuid"`

	// ProductId、BuyerId、SellerId 三元组唯一，保证同一商品同一对买卖双方只有一个聊天室
	ProductId string `gorm:"column:product_id;uniqueIndex:uk_room_triple,priority:1;type:char(20);not null;comment:商品id"`
	BuyerId   string `gorm:"column:buyer_id;uniqueIndex:uk_room_triple,priority:2;index;type:char(20);not null;comment:买家uuid"`
	SellerId  string `gorm:"column:seller_id;uniqueIndex:uk_room_triple,priority:3;index;type:char(20);not null;comment:卖家uuid"`

	// 创建时的商品快照，之后商品改价或改名不影响聊天室展示
	ProductTitle string `gorm:"column:product_title;type:varchar(100);not null;comment:商品标题快照"`
	ProductPrice int64  `gorm:"column:product_price;not null;comment:商品价格快照"`
	ProductImage string `gorm:"column:product_image;type:varchar(255);comment:商品图片快照"`
}

// TableName 指定表名
func (Room) TableName() string {
	return "room"
}
