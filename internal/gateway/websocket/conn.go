package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"market_chat_server/internal/model"
	"market_chat_server/internal/service/chat"
	"market_chat_server/internal/service/identity"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/errorx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 8 * 1024
)

// UserConn 一条已认证的 WebSocket 连接
// 一个读协程处理上行帧，一个写协程串行写出下行帧
type UserConn struct {
	UserId   string
	Nickname string
	Handle   string // 连接句柄，写入在线会话键

	conn  *websocket.Conn
	gw    *Gateway
	send  chan []byte
	rooms map[string]struct{} // 由 Hub 的锁保护
}

func newUserConn(gw *Gateway, conn *websocket.Conn, id *identity.Identity, handle string) *UserConn {
	return &UserConn{
		UserId:   id.UserId,
		Nickname: id.Nickname,
		Handle:   handle,
		conn:     conn,
		gw:       gw,
		send:     make(chan []byte, constants.CHANNEL_SIZE),
		rooms:    make(map[string]struct{}),
	}
}

// enqueue 非阻塞写入发送队列，队列满说明客户端消费太慢，直接断开
func (c *UserConn) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		zap.L().Warn("ws send buffer full, dropping connection",
			zap.String("user_id", c.UserId),
			zap.String("handle", c.Handle),
		)
		_ = c.conn.Close()
	}
}

func (c *UserConn) reply(f OutboundFrame) {
	c.enqueue(encodeFrame(f))
}

func (c *UserConn) replyError(roomId string, err error) {
	var codeErr *errorx.CodeError
	msg := errorx.ErrServerBusy.Msg
	code := errorx.GetCode(err)
	switch {
	case !errors.As(err, &codeErr), code == errorx.CodeDBError, code == errorx.CodeCacheError:
		// 存储类错误只写日志，对外统一提示服务繁忙
		zap.L().Error("ws command failed", zap.String("user_id", c.UserId), zap.String("room_id", roomId), zap.Error(err))
	default:
		msg = codeErr.Msg
	}
	c.reply(OutboundFrame{Type: FrameError, RoomId: roomId, Code: code, Msg: msg})
}

// refreshPresence 每次收到 pong 或上行帧都续期在线会话
func (c *UserConn) refreshPresence() {
	owned, err := c.gw.presence.Refresh(context.Background(), c.UserId, c.Handle)
	if err != nil {
		zap.L().Warn("refresh presence failed", zap.String("user_id", c.UserId), zap.Error(err))
		return
	}
	if !owned {
		zap.L().Debug("session owned by a newer connection", zap.String("user_id", c.UserId), zap.String("handle", c.Handle))
	}
}

// readPump 读取上行帧直到连接断开，退出时注销连接并清理在线状态
func (c *UserConn) readPump() {
	defer func() {
		c.gw.hub.Unregister(c)
		if _, err := c.gw.presence.ClearOnline(context.Background(), c.UserId, c.Handle); err != nil {
			zap.L().Warn("clear presence failed", zap.String("user_id", c.UserId), zap.Error(err))
		}
		_ = c.conn.Close()
		zap.L().Info("ws disconnected", zap.String("user_id", c.UserId), zap.String("handle", c.Handle))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.refreshPresence()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read error", zap.String("user_id", c.UserId), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.refreshPresence()

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.replyError("", errorx.Wrap(err, errorx.CodeInvalidParam, "无法解析的消息帧"))
			continue
		}
		c.handle(frame)
	}
}

// writePump 串行写出下行帧并定时发送 ping，发送通道关闭时发送关闭帧
func (c *UserConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write error", zap.String("user_id", c.UserId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ==================== 上行帧处理 ====================

func (c *UserConn) handle(f InboundFrame) {
	ctx := context.Background()
	switch f.Action {
	case ActionPing:
		c.reply(OutboundFrame{Type: FramePong})
	case ActionSubscribe:
		c.handleSubscribe(ctx, f)
	case ActionUnsubscribe:
		c.handleUnsubscribe(ctx, f)
	case ActionPublish:
		c.handlePublish(ctx, f)
	case ActionLeave:
		c.handleLeave(ctx, f)
	default:
		c.replyError(f.RoomId, errorx.Newf(errorx.CodeInvalidParam, "未知的动作 %q", f.Action))
	}
}

func (c *UserConn) handleSubscribe(ctx context.Context, f InboundFrame) {
	if f.RoomId == "" {
		c.replyError("", errorx.New(errorx.CodeInvalidParam, "room_id 不能为空"))
		return
	}
	ok, err := c.gw.chat.IsParticipant(ctx, f.RoomId, c.UserId)
	if err != nil {
		c.replyError(f.RoomId, err)
		return
	}
	if !ok {
		c.replyError(f.RoomId, errorx.ErrForbidden)
		return
	}
	c.gw.hub.Subscribe(f.RoomId, c)
	c.reply(OutboundFrame{Type: FrameSubscribed, RoomId: f.RoomId})
}

func (c *UserConn) handleUnsubscribe(ctx context.Context, f InboundFrame) {
	if f.RoomId == "" {
		c.replyError("", errorx.New(errorx.CodeInvalidParam, "room_id 不能为空"))
		return
	}
	c.gw.hub.Unsubscribe(f.RoomId, c)
	if err := c.gw.presence.ClearCurrentRoomIf(ctx, c.UserId, f.RoomId); err != nil {
		zap.L().Warn("clear current room failed", zap.String("user_id", c.UserId), zap.String("room_id", f.RoomId), zap.Error(err))
	}
	c.reply(OutboundFrame{Type: FrameUnsubscribed, RoomId: f.RoomId})
}

func (c *UserConn) handlePublish(ctx context.Context, f InboundFrame) {
	ok, err := c.gw.chat.IsParticipant(ctx, f.RoomId, c.UserId)
	if err != nil {
		c.replyError(f.RoomId, err)
		return
	}
	if !ok {
		c.replyError(f.RoomId, errorx.ErrForbidden)
		return
	}
	res, err := c.gw.chat.SendMessage(ctx, chat.SendMessageCommand{
		SenderId: c.UserId,
		RoomId:   f.RoomId,
		Type:     model.MessageType(f.Type),
		Content:  f.Content,
		ImageUrl: f.ImageUrl,
	})
	if err != nil {
		c.replyError(f.RoomId, err)
		return
	}
	if err := c.gw.Publish(ctx, res.Delivery); err != nil {
		c.replyError(f.RoomId, err)
	}
}

func (c *UserConn) handleLeave(ctx context.Context, f InboundFrame) {
	res, err := c.gw.chat.LeaveRoom(ctx, c.UserId, f.RoomId)
	if err != nil {
		c.replyError(f.RoomId, err)
		return
	}
	if err := c.gw.Publish(ctx, res.Delivery); err != nil {
		c.replyError(f.RoomId, err)
	}
}
