package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/model"
	"market_chat_server/internal/service/notify"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/errorx"
	"market_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// ==================== 发送消息 ====================

// SendMessage 发送文本或图片消息
// 命中隐私过滤的消息照常落库，但只推送给发送者，不计未读也不通知
func (e *Engine) SendMessage(ctx context.Context, cmd SendMessageCommand) (*SendResult, error) {
	if err := validateSend(cmd); err != nil {
		return nil, err
	}
	me, others, err := e.membership(cmd.RoomId, cmd.SenderId)
	if err != nil {
		return nil, err
	}
	if !me.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "已经离开该聊天室")
	}
	var counterpart *model.Participant
	if len(others) > 0 {
		counterpart = &others[0]
		if !counterpart.IsActive {
			return nil, errorx.New(errorx.CodeForbidden, "对方已离开聊天室")
		}
	}

	verdict := e.evaluate(cmd.Content)
	msg := &model.Message{
		Uuid:          snowflake.GenerateID(),
		RoomId:        cmd.RoomId,
		SendId:        cmd.SenderId,
		SendName:      me.Nickname,
		Type:          cmd.Type,
		Content:       cmd.Content,
		ImageUrl:      cmd.ImageUrl,
		IsBlocked:     verdict.Blocked,
		BlockedReason: verdict.Reason,
	}
	members := []string{cmd.SenderId}
	if counterpart != nil {
		members = append(members, counterpart.UserId)
	}
	err = e.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		return tx.Participant.UpdatePreview(cmd.RoomId, members, previewOf(msg), msg.CreatedAt)
	})
	if err != nil {
		zap.L().Error("保存消息失败", zap.String("room_id", cmd.RoomId), zap.String("send_id", cmd.SenderId), zap.Error(err))
		return nil, err
	}

	payload := toMessageRespond(msg)
	result := &SendResult{Message: payload, Blocked: msg.IsBlocked}
	if msg.IsBlocked {
		zap.L().Info("消息被隐私过滤拦截",
			zap.String("room_id", cmd.RoomId),
			zap.String("send_id", cmd.SenderId),
			zap.String("reason", msg.BlockedReason),
		)
		result.Delivery = Delivery{Audience: AudienceSender, Event: EventMessage, RoomId: cmd.RoomId, UserId: cmd.SenderId, Payload: payload}
		return result, nil
	}

	result.Delivery = Delivery{Audience: AudienceRoom, Event: EventMessage, RoomId: cmd.RoomId, UserId: cmd.SenderId, Payload: payload}
	if counterpart != nil {
		e.countAndNotify(ctx, msg, counterpart.UserId)
	}
	return result, nil
}

// countAndNotify 消息已提交，缓存失败只影响未读数展示，可由数据库重建
func (e *Engine) countAndNotify(ctx context.Context, msg *model.Message, recipientId string) {
	incremented, err := e.readState.IncrementUnread(ctx, msg.RoomId, recipientId)
	if err != nil {
		zap.L().Warn("增加未读数失败", zap.String("room_id", msg.RoomId), zap.String("user_id", recipientId), zap.Error(err))
		return
	}
	if !incremented {
		return
	}
	e.notifier.Dispatch(notify.Notification{
		UserId: recipientId,
		Kind:   notify.KindNewMessage,
		RoomId: msg.RoomId,
		Title:  msg.SendName,
		Body:   previewOf(msg),
	})
}

func validateSend(cmd SendMessageCommand) error {
	if cmd.RoomId == "" || cmd.SenderId == "" {
		return errorx.ErrInvalidParam
	}
	if utf8.RuneCountInString(cmd.Content) > constants.MESSAGE_MAX_LENGTH {
		return errorx.Newf(errorx.CodeInvalidParam, "消息内容不能超过 %d 个字符", constants.MESSAGE_MAX_LENGTH)
	}
	switch cmd.Type {
	case model.MessageTypeText:
		if strings.TrimSpace(cmd.Content) == "" {
			return errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
		}
	case model.MessageTypeImage:
		if strings.TrimSpace(cmd.ImageUrl) == "" {
			return errorx.New(errorx.CodeInvalidParam, "图片地址不能为空")
		}
	default:
		return errorx.Newf(errorx.CodeInvalidParam, "不支持的消息类型 %s", cmd.Type)
	}
	return nil
}

func previewOf(msg *model.Message) string {
	switch {
	case msg.IsBlocked:
		return constants.BLOCKED_PREVIEW
	case msg.Type == model.MessageTypeImage && strings.TrimSpace(msg.Content) == "":
		return constants.IMAGE_PREVIEW
	default:
		return msg.Content
	}
}

// ==================== 聊天记录 ====================

// GetMessages 分页获取聊天记录，返回的消息按时间正序
// 第一页视为打开聊天室：同一事务内先对齐已读再读取，并把该聊天室记为正在查看
func (e *Engine) GetMessages(ctx context.Context, userId, roomId string, page, size int) (*respond.MessagePageRespond, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = constants.DEFAULT_PAGE_SIZE
	}
	if size > constants.MAX_PAGE_SIZE {
		size = constants.MAX_PAGE_SIZE
	}

	me, _, err := e.membership(roomId, userId)
	if err != nil {
		return nil, err
	}
	if !me.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "已经离开该聊天室")
	}

	now := time.Now()
	var (
		messages []model.Message
		total    int64
	)
	err = e.repos.Transaction(func(tx *repository.Repositories) error {
		if page == 1 {
			if _, err := e.readState.Reconcile(ctx, tx.Message, roomId, userId, now); err != nil {
				return err
			}
		}
		var err error
		if total, err = tx.Message.CountByRoom(roomId); err != nil {
			return err
		}
		messages, err = tx.Message.FindPageByRoom(roomId, (page-1)*size, size)
		return err
	})
	if err != nil {
		zap.L().Error("查询聊天记录失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	if page == 1 {
		if err := e.presence.SetCurrentRoom(ctx, userId, roomId); err != nil {
			zap.L().Warn("记录当前聊天室失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
		}
	}
	if err := e.readState.UpdateLastRead(ctx, roomId, userId, now); err != nil {
		zap.L().Warn("记录最后阅读时间失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
	}

	// 倒序读取，过滤掉他人被拦截的消息后翻转为正序
	visible := make([]respond.MessageRespond, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		m := &messages[i]
		if m.IsBlocked && m.SendId != userId {
			continue
		}
		visible = append(visible, toMessageRespond(m))
	}
	return &respond.MessagePageRespond{
		Messages: visible,
		Page:     page,
		Size:     size,
		Total:    total,
		HasNext:  int64(page*size) < total,
	}, nil
}
