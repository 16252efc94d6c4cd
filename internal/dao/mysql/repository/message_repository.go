package repository

import (
	"market_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 写入消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBErrorf(err, "创建消息 room=%s", message.RoomId)
	}
	return nil
}

// FindPageByRoom 按 ID 倒序分页，ID 是写入顺序，同一时间戳的消息也能稳定排序
func (r *messageRepository) FindPageByRoom(roomId string, offset, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("room_id = ?", roomId).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分页查询消息 room=%s", roomId)
	}
	return messages, nil
}

// CountByRoom 统计聊天室消息总数
func (r *messageRepository) CountByRoom(roomId string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("room_id = ?", roomId).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计消息数 room=%s", roomId)
	}
	return count, nil
}

// CountUnread 统计未读消息，被拦截的消息对接收方不可见，不计入
func (r *messageRepository) CountUnread(roomId, readerId string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("room_id = ? AND send_id <> ? AND is_read = ? AND is_blocked = ?", roomId, readerId, false, false).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "统计未读消息 room=%s reader=%s", roomId, readerId)
	}
	return count, nil
}

// LatestId 读取已读水位，自增 ID 由数据库生成，不受应用时钟和时间精度影响
func (r *messageRepository) LatestId(roomId string) (uint, error) {
	var maxId uint
	err := r.db.Model(&model.Message{}).
		Select("COALESCE(MAX(id), 0)").
		Where("room_id = ?", roomId).
		Scan(&maxId).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "查询最新消息 room=%s", roomId)
	}
	return maxId, nil
}

// MarkReadUpTo 单条 UPDATE 完成批量已读，不逐行加载
func (r *messageRepository) MarkReadUpTo(roomId, readerId string, maxId uint) (int64, error) {
	res := r.db.Model(&model.Message{}).
		Where("room_id = ? AND send_id <> ? AND is_read = ? AND id <= ?", roomId, readerId, false, maxId).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记已读 room=%s reader=%s", roomId, readerId)
	}
	return res.RowsAffected, nil
}
