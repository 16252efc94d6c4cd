// Package middleware 提供 gin 中间件
package middleware

import (
	"net/http"
	"strings"

	"market_chat_server/pkg/errorx"
	"market_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuth JWT 认证中间件
// 校验身份服务签发的 Access Token，并将用户 ID 存入上下文 (key: user_id)
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "请先登录")
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortUnauthorized(c, "Token 格式错误，请使用 Bearer Token")
			return
		}

		// 3. 验证 Token，要求为 Access Token 且携带用户 ID
		claims, err := jwt.ParseAccessToken(parts[1])
		if err != nil {
			zap.L().Debug("jwt rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}

		// 4. 将用户信息存入上下文，供后续 Handler 使用
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
		"data": nil,
	})
}
