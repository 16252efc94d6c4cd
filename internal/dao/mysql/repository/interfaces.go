// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"
	"time"

	"market_chat_server/internal/model"
	"market_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - ErrDuplicatedKey  -> CodeConflict
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, dbErrorCode(err), msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, dbErrorCode(err), format, args...)
}

func dbErrorCode(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorx.CodeConflict
	default:
		return errorx.CodeDBError
	}
}

// ==================== Repository 接口定义 ====================

// RoomRepository 聊天室数据访问接口
type RoomRepository interface {
	// FindByUuid 根据 UUID 查找聊天室
	FindByUuid(uuid string) (*model.Room, error)
	// FindByTriple 根据 商品+买家+卖家 查找聊天室
	FindByTriple(productId, buyerId, sellerId string) (*model.Room, error)
	// FindByUuids 批量查找聊天室
	FindByUuids(uuids []string) ([]model.Room, error)
	// Create 创建聊天室，三元组冲突时返回 CodeConflict
	Create(room *model.Room) error
}

// ParticipantRepository 聊天室成员数据访问接口
type ParticipantRepository interface {
	// Create 批量创建成员
	Create(participants []*model.Participant) error
	// FindByRoomAndUser 查找某用户在聊天室中的成员记录（含已离开）
	FindByRoomAndUser(roomId, userId string) (*model.Participant, error)
	// FindByRoom 查找聊天室的全部成员
	FindByRoom(roomId string) ([]model.Participant, error)
	// FindByRooms 批量查找多个聊天室的成员
	FindByRooms(roomIds []string) ([]model.Participant, error)
	// FindActiveByUser 查找用户仍在的聊天室成员记录，按最近消息时间倒序
	FindActiveByUser(userId string) ([]model.Participant, error)
	// ExistsActive 判断用户是否为聊天室的在籍成员
	ExistsActive(roomId, userId string) (bool, error)
	// Leave 将在籍成员标记为离开，返回受影响行数（0 表示已离开或不是成员）
	Leave(roomId, userId string, at time.Time) (int64, error)
	// UpdatePreview 更新指定成员的最新消息摘要和时间
	UpdatePreview(roomId string, userIds []string, preview string, at time.Time) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 写入消息
	Create(message *model.Message) error
	// FindPageByRoom 按 ID 倒序分页查询聊天室消息（未过滤）
	FindPageByRoom(roomId string, offset, limit int) ([]model.Message, error)
	// CountByRoom 统计聊天室消息总数（未过滤）
	CountByRoom(roomId string) (int64, error)
	// CountUnread 统计他人发送、未被拦截且未读的消息数
	CountUnread(roomId, readerId string) (int64, error)
	ReadMarker
}

// ReadMarker 已读标记的持久化端口
type ReadMarker interface {
	// LatestId 聊天室当前最大的消息自增 ID，没有消息时为 0
	LatestId(roomId string) (uint, error)
	// MarkReadUpTo 将他人发送、未读且 ID 不大于 maxId 的消息一次性标记为已读
	MarkReadUpTo(roomId, readerId string, maxId uint) (int64, error)
}

// UserRepository 用户资料只读接口
type UserRepository interface {
	FindByUuid(uuid string) (*model.UserInfo, error)
}

// ProductRepository 商品只读接口
type ProductRepository interface {
	FindByUuid(uuid string) (*model.Product, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db          *gorm.DB
	Room        RoomRepository
	Participant ParticipantRepository
	Message     MessageRepository
	User        UserRepository
	Product     ProductRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		Room:        NewRoomRepository(db),
		Participant: NewParticipantRepository(db),
		Message:     NewMessageRepository(db),
		User:        NewUserRepository(db),
		Product:     NewProductRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn 内只能使用 txRepos，混用外层 Repositories 的查询不在同一事务中
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
