package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectAccessToken 聊天服务只接受 Access Token
const SubjectAccessToken = "access_token"

// ErrNotInitialized 未调用 Init 时解析/签发 Token 返回该错误
var ErrNotInitialized = errors.New("jwt not initialized")

type jwtConfig struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

var cfg *jwtConfig

// Init 初始化 JWT 配置
// 身份服务签发 Token，聊天服务只负责校验；签发接口保留给测试与运维脚本使用
func Init(secret, issuer string, accessExpiryMinutes int) {
	cfg = &jwtConfig{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: time.Duration(accessExpiryMinutes) * time.Minute,
	}
}

// Claims 自定义 JWT 声明
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(userID string) (string, error) {
	if cfg == nil {
		return "", ErrNotInitialized
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.issuer,
			Subject:   SubjectAccessToken,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.secret)
}

// ParseToken 解析并验证 Token，只接受 HS256 签名
func ParseToken(tokenString string) (*Claims, error) {
	if cfg == nil {
		return nil, ErrNotInitialized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return cfg.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// ParseAccessToken 解析 Token 并要求其为 Access Token 且携带用户 ID
func ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != SubjectAccessToken {
		return nil, jwt.ErrTokenInvalidSubject
	}
	if claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
