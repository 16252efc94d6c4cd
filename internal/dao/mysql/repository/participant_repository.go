package repository

import (
	"time"

	"market_chat_server/internal/model"

	"gorm.io/gorm"
)

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository 创建聊天室成员 Repository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

// Create 批量创建成员
func (r *participantRepository) Create(participants []*model.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	if err := r.db.Create(participants).Error; err != nil {
		return wrapDBErrorf(err, "创建聊天室成员 room=%s", participants[0].RoomId)
	}
	return nil
}

// FindByRoomAndUser 查找成员记录（含已离开）
func (r *participantRepository) FindByRoomAndUser(roomId, userId string) (*model.Participant, error) {
	var p model.Participant
	if err := r.db.First(&p, "room_id = ? AND user_id = ?", roomId, userId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室成员 room=%s user=%s", roomId, userId)
	}
	return &p, nil
}

// FindByRoom 查找聊天室的全部成员
func (r *participantRepository) FindByRoom(roomId string) ([]model.Participant, error) {
	var ps []model.Participant
	if err := r.db.Where("room_id = ?", roomId).Order("id ASC").Find(&ps).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室成员列表 room=%s", roomId)
	}
	return ps, nil
}

// FindByRooms 批量查找多个聊天室的成员
func (r *participantRepository) FindByRooms(roomIds []string) ([]model.Participant, error) {
	var ps []model.Participant
	if len(roomIds) == 0 {
		return ps, nil
	}
	if err := r.db.Where("room_id IN ?", roomIds).Find(&ps).Error; err != nil {
		return nil, wrapDBError(err, "批量查询聊天室成员")
	}
	return ps, nil
}

// FindActiveByUser 查找用户仍在的聊天室，最近有消息的排在前面，没有消息的按加入顺序排在最后
func (r *participantRepository) FindActiveByUser(userId string) ([]model.Participant, error) {
	var ps []model.Participant
	err := r.db.Where("user_id = ? AND is_active = ?", userId, true).
		Order("CASE WHEN last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("last_message_at DESC").
		Order("id DESC").
		Find(&ps).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户聊天室列表 user=%s", userId)
	}
	return ps, nil
}

// ExistsActive 判断用户是否为聊天室的在籍成员
func (r *participantRepository) ExistsActive(roomId, userId string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomId, userId, true).
		Count(&count).Error
	if err != nil {
		return false, wrapDBErrorf(err, "查询成员身份 room=%s user=%s", roomId, userId)
	}
	return count > 0, nil
}

// Leave 条件更新 is_active，并发重复离开时只有一次成功
func (r *participantRepository) Leave(roomId, userId string, at time.Time) (int64, error) {
	res := r.db.Model(&model.Participant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomId, userId, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   at,
		})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "离开聊天室 room=%s user=%s", roomId, userId)
	}
	return res.RowsAffected, nil
}

// UpdatePreview 更新指定成员的最新消息摘要
func (r *participantRepository) UpdatePreview(roomId string, userIds []string, preview string, at time.Time) error {
	if len(userIds) == 0 {
		return nil
	}
	err := r.db.Model(&model.Participant{}).
		Where("room_id = ? AND user_id IN ?", roomId, userIds).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": at,
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新会话预览 room=%s", roomId)
	}
	return nil
}
