package repository

import (
	"market_chat_server/internal/model"

	"gorm.io/gorm"
)

// profileColumns 聊天服务只关心昵称和头像快照
var profileColumns = []string{"uuid", "nickname", "avatar", "status"}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户资料 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按用户 ID 读取资料快照所需的列
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	err := r.db.Select(profileColumns).Where("uuid = ?", uuid).Take(&user).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户资料 uuid=%s", uuid)
	}
	return &user, nil
}
