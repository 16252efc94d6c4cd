// Package identity 将连接凭证解析为用户身份，并提供用户资料快照
package identity

import (
	"context"

	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/pkg/errorx"
	"market_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

const userStatusDisabled int8 = 1

// Identity 用户身份与展示资料
type Identity struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Resolver 凭证 -> 身份
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

// ProfileLookup 用户 ID -> 展示资料
type ProfileLookup interface {
	Profile(ctx context.Context, userId string) (*Identity, error)
}

// JWTResolver 校验 Access Token，再从用户表读取昵称与头像
type JWTResolver struct {
	users repository.UserRepository
}

// NewJWTResolver 创建解析器
func NewJWTResolver(users repository.UserRepository) *JWTResolver {
	return &JWTResolver{users: users}
}

// Resolve 凭证无效、用户不存在或被禁用时返回 CodeUnauthorized
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "缺少认证凭证")
	}
	claims, err := jwt.ParseAccessToken(credential)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "Token 已过期或无效")
	}
	id, err := r.Profile(ctx, claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) || errorx.IsForbidden(err) {
			return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "用户不存在或已被禁用")
		}
		return nil, err
	}
	return id, nil
}

// Profile 查询用户资料，被禁用的用户返回 CodeForbidden
func (r *JWTResolver) Profile(_ context.Context, userId string) (*Identity, error) {
	user, err := r.users.FindByUuid(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrapf(err, errorx.CodeNotFound, "用户 %s 不存在", userId)
		}
		zap.L().Error("查询用户资料失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if user.Status == userStatusDisabled {
		return nil, errorx.Newf(errorx.CodeForbidden, "用户 %s 已被禁用", userId)
	}
	return &Identity{UserId: user.Uuid, Nickname: user.Nickname, Avatar: user.Avatar}, nil
}

var (
	_ Resolver      = (*JWTResolver)(nil)
	_ ProfileLookup = (*JWTResolver)(nil)
)
