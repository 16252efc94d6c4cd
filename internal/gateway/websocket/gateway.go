package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"market_chat_server/internal/service/chat"
	"market_chat_server/internal/service/identity"
	"market_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatEngine 网关调用的引擎操作
type ChatEngine interface {
	IsParticipant(ctx context.Context, roomId, userId string) (bool, error)
	SendMessage(ctx context.Context, cmd chat.SendMessageCommand) (*chat.SendResult, error)
	LeaveRoom(ctx context.Context, userId, roomId string) (*chat.LeaveResult, error)
}

// PresenceTracker 网关维护的在线状态
type PresenceTracker interface {
	SetOnline(ctx context.Context, userId, handle string) error
	ClearOnline(ctx context.Context, userId, handle string) (bool, error)
	Refresh(ctx context.Context, userId, handle string) (bool, error)
	ClearCurrentRoomIf(ctx context.Context, userId, roomId string) error
}

// Config 网关依赖
type Config struct {
	Hub      *Hub
	Broker   MessageBroker
	Chat     ChatEngine
	Identity identity.Resolver
	Presence PresenceTracker
}

// Gateway WebSocket 网关
type Gateway struct {
	hub      *Hub
	broker   MessageBroker
	chat     ChatEngine
	identity identity.Resolver
	presence PresenceTracker
	upgrader websocket.Upgrader
}

// NewGateway 创建网关
func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		hub:      cfg.Hub,
		broker:   cfg.Broker,
		chat:     cfg.Chat,
		identity: cfg.Identity,
		presence: cfg.Presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			// 跨域由 CORS 中间件和 Token 校验把关
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type connectedData struct {
	UserId       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	ConnectionId string `json:"connection_id"`
}

// ServeWS 升级连接并完成认证
// GET /wss?token=xxx，也接受 Authorization: Bearer 和 Sec-WebSocket-Protocol 携带的 Token
// 认证失败时发送 error 帧后关闭连接
func (g *Gateway) ServeWS(c *gin.Context) {
	token, protocol := credentialFrom(c.Request)
	var header http.Header
	if protocol != "" {
		header = http.Header{"Sec-WebSocket-Protocol": []string{protocol}}
	}
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		zap.L().Warn("ws upgrade failed", zap.Error(err))
		return
	}

	ctx := c.Request.Context()
	id, err := g.identity.Resolve(ctx, token)
	if err != nil {
		zap.L().Info("ws auth failed", zap.String("remote", c.ClientIP()), zap.Error(err))
		rejectConn(conn, err)
		return
	}

	handle := uuid.NewString()
	uc := newUserConn(g, conn, id, handle)
	if err := g.presence.SetOnline(ctx, id.UserId, handle); err != nil {
		zap.L().Warn("set presence failed", zap.String("user_id", id.UserId), zap.Error(err))
	}
	g.hub.Register(uc)
	uc.reply(OutboundFrame{
		Type: FrameConnected,
		Data: connectedData{UserId: id.UserId, Nickname: id.Nickname, ConnectionId: handle},
	})
	zap.L().Info("ws connected", zap.String("user_id", id.UserId), zap.String("handle", handle))

	go uc.writePump()
	go uc.readPump()
}

func rejectConn(conn *websocket.Conn, err error) {
	msg := errorx.ErrUnauthorized.Msg
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code == errorx.CodeUnauthorized {
		msg = codeErr.Msg
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, encodeFrame(OutboundFrame{
		Type: FrameError,
		Code: errorx.CodeUnauthorized,
		Msg:  msg,
	}))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
	_ = conn.Close()
}

// credentialFrom 依次从 query、Authorization 头、子协议中取 Token
// 第二个返回值为需要回显的子协议
func credentialFrom(r *http.Request) (string, string) {
	if token := r.URL.Query().Get("token"); token != "" {
		return token, ""
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], ""
		}
	}
	if protocols := websocket.Subprotocols(r); len(protocols) > 0 {
		token := protocols[len(protocols)-1]
		return token, token
	}
	return "", ""
}

// Publish 交给消息代理投递，HTTP 发送和离开接口也经由这里推送
func (g *Gateway) Publish(ctx context.Context, d chat.Delivery) error {
	return g.broker.Publish(ctx, d)
}

// Run 启动消息代理的消费循环，阻塞直到 ctx 取消
func (g *Gateway) Run(ctx context.Context) {
	g.broker.Start(ctx)
}

// Close 关闭消息代理
func (g *Gateway) Close() error {
	return g.broker.Close()
}
