package repository

import (
	"market_chat_server/internal/model"

	"gorm.io/gorm"
)

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建聊天室 Repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// FindByUuid 按 UUID 查找聊天室
func (r *roomRepository) FindByUuid(uuid string) (*model.Room, error) {
	var room model.Room
	if err := r.db.First(&room, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 uuid=%s", uuid)
	}
	return &room, nil
}

// FindByTriple 按 商品+买家+卖家 查找聊天室
func (r *roomRepository) FindByTriple(productId, buyerId, sellerId string) (*model.Room, error) {
	var room model.Room
	err := r.db.Where("product_id = ? AND buyer_id = ? AND seller_id = ?", productId, buyerId, sellerId).
		First(&room).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 product=%s buyer=%s seller=%s", productId, buyerId, sellerId)
	}
	return &room, nil
}

// FindByUuids 按 UUID 列表查找聊天室
func (r *roomRepository) FindByUuids(uuids []string) ([]model.Room, error) {
	var rooms []model.Room
	if len(uuids) == 0 {
		return rooms, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&rooms).Error; err != nil {
		return nil, wrapDBError(err, "批量查询聊天室")
	}
	return rooms, nil
}

// Create 创建聊天室
func (r *roomRepository) Create(room *model.Room) error {
	if err := r.db.Create(room).Error; err != nil {
		return wrapDBErrorf(err, "创建聊天室 uuid=%s", room.Uuid)
	}
	return nil
}
