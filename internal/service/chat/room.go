package chat

import (
	"context"
	"fmt"
	"time"

	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/model"
	"market_chat_server/internal/service/notify"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/errorx"
	"market_chat_server/pkg/util/random"
	"market_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// ==================== 创建聊天室 ====================

// CreateRoom 买家针对商品发起聊天
// 同一 商品+买家+卖家 只有一个聊天室，重复调用返回已有聊天室；已离开的成员不会被恢复
func (e *Engine) CreateRoom(ctx context.Context, buyerId, productId string) (*respond.RoomRespond, error) {
	p, err := e.products.Resolve(ctx, productId)
	if err != nil {
		return nil, err
	}
	if p.SellerId == buyerId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能和自己发起聊天")
	}

	existing, err := e.repos.Room.FindByTriple(p.ProductId, buyerId, p.SellerId)
	if err == nil {
		return e.roomView(ctx, existing, buyerId)
	}
	if !errorx.IsNotFound(err) {
		zap.L().Error("查询聊天室失败", zap.String("product_id", productId), zap.Error(err))
		return nil, err
	}

	buyer, err := e.profiles.Profile(ctx, buyerId)
	if err != nil {
		return nil, err
	}
	seller, err := e.profiles.Profile(ctx, p.SellerId)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		Uuid:         "R" + random.GetNowAndLenRandomString(13),
		ProductId:    p.ProductId,
		BuyerId:      buyerId,
		SellerId:     p.SellerId,
		ProductTitle: p.Title,
		ProductPrice: p.Price,
		ProductImage: p.ImageUrl,
	}
	err = e.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Room.Create(room); err != nil {
			return err
		}
		return tx.Participant.Create([]*model.Participant{
			{RoomId: room.Uuid, UserId: buyerId, Role: model.RoleBuyer, Nickname: buyer.Nickname, Avatar: buyer.Avatar, IsActive: true},
			{RoomId: room.Uuid, UserId: p.SellerId, Role: model.RoleSeller, Nickname: seller.Nickname, Avatar: seller.Avatar, IsActive: true},
		})
	})
	if errorx.IsConflict(err) {
		// 并发创建，另一方已提交
		existing, findErr := e.repos.Room.FindByTriple(p.ProductId, buyerId, p.SellerId)
		if findErr != nil {
			return nil, findErr
		}
		return e.roomView(ctx, existing, buyerId)
	}
	if err != nil {
		zap.L().Error("创建聊天室失败", zap.String("product_id", productId), zap.String("buyer_id", buyerId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("聊天室已创建", zap.String("room_id", room.Uuid), zap.String("product_id", p.ProductId))
	e.notifier.Dispatch(notify.Notification{
		UserId: p.SellerId,
		Kind:   notify.KindRoomCreated,
		RoomId: room.Uuid,
		Title:  p.Title,
		Body:   fmt.Sprintf("%s님이 채팅을 시작했습니다.", buyer.Nickname),
	})
	return e.roomView(ctx, room, buyerId)
}

// ==================== 聊天室列表 ====================

// ListRooms 用户仍在的聊天室，按最近消息时间倒序
func (e *Engine) ListRooms(ctx context.Context, userId string) ([]respond.RoomRespond, error) {
	mine, err := e.repos.Participant.FindActiveByUser(userId)
	if err != nil {
		zap.L().Error("查询聊天室列表失败", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}
	list := make([]respond.RoomRespond, 0, len(mine))
	if len(mine) == 0 {
		return list, nil
	}

	roomIds := make([]string, 0, len(mine))
	for _, p := range mine {
		roomIds = append(roomIds, p.RoomId)
	}
	rooms, err := e.repos.Room.FindByUuids(roomIds)
	if err != nil {
		return nil, err
	}
	members, err := e.repos.Participant.FindByRooms(roomIds)
	if err != nil {
		return nil, err
	}
	roomMap := make(map[string]*model.Room, len(rooms))
	for i := range rooms {
		roomMap[rooms[i].Uuid] = &rooms[i]
	}
	memberMap := make(map[string][]model.Participant, len(rooms))
	for _, m := range members {
		memberMap[m.RoomId] = append(memberMap[m.RoomId], m)
	}

	for _, p := range mine {
		room, ok := roomMap[p.RoomId]
		if !ok {
			zap.L().Warn("成员记录对应的聊天室不存在", zap.String("room_id", p.RoomId))
			continue
		}
		unread, err := e.unreadCount(ctx, p.RoomId, userId)
		if err != nil {
			return nil, err
		}
		list = append(list, buildRoomRespond(room, memberMap[p.RoomId], userId, unread))
	}
	return list, nil
}

// unreadCount 优先读缓存，缓存缺失时用数据库 is_read 统计并异步回填
func (e *Engine) unreadCount(ctx context.Context, roomId, userId string) (int64, error) {
	count, found, err := e.readState.GetUnread(ctx, roomId, userId)
	if err == nil && found {
		return count, nil
	}
	if err != nil {
		zap.L().Warn("读取未读数缓存失败，回退数据库", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
	}

	count, err = e.repos.Message.CountUnread(roomId, userId)
	if err != nil {
		return 0, err
	}
	e.submit(func() {
		if err := e.readState.SetUnread(context.Background(), roomId, userId, count); err != nil {
			zap.L().Warn("回填未读数缓存失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
		}
	})
	return count, nil
}

func (e *Engine) roomView(ctx context.Context, room *model.Room, viewerId string) (*respond.RoomRespond, error) {
	members, err := e.repos.Participant.FindByRoom(room.Uuid)
	if err != nil {
		return nil, err
	}
	// 已离开的成员不再有未读数，也不回填已清除的缓存键
	var unread int64
	if viewerActive(members, viewerId) {
		unread, err = e.unreadCount(ctx, room.Uuid, viewerId)
		if err != nil {
			return nil, err
		}
	}
	rsp := buildRoomRespond(room, members, viewerId, unread)
	return &rsp, nil
}

func viewerActive(members []model.Participant, viewerId string) bool {
	for _, m := range members {
		if m.UserId == viewerId {
			return m.IsActive
		}
	}
	return false
}

func buildRoomRespond(room *model.Room, members []model.Participant, viewerId string, unread int64) respond.RoomRespond {
	rsp := respond.RoomRespond{
		RoomId:       room.Uuid,
		ProductId:    room.ProductId,
		ProductTitle: room.ProductTitle,
		ProductPrice: room.ProductPrice,
		ProductImage: room.ProductImage,
		BuyerId:      room.BuyerId,
		SellerId:     room.SellerId,
		UnreadCount:  unread,
		CreatedAt:    room.CreatedAt,
	}
	for _, m := range members {
		if m.UserId == viewerId {
			rsp.Role = string(m.Role)
			rsp.Left = !m.IsActive
			rsp.LastMessage = m.LastMessage
			if m.LastMessageAt.Valid {
				at := m.LastMessageAt.Time
				rsp.LastMessageAt = &at
			}
			continue
		}
		rsp.Counterpart = respond.CounterpartRespond{
			UserId:   m.UserId,
			Nickname: m.Nickname,
			Avatar:   m.Avatar,
			Left:     !m.IsActive,
		}
	}
	return rsp
}

// IsParticipant 判断用户是否为聊天室在籍成员，供网关订阅和发送前快速校验
func (e *Engine) IsParticipant(_ context.Context, roomId, userId string) (bool, error) {
	return e.repos.Participant.ExistsActive(roomId, userId)
}

// ==================== 离开聊天室 ====================

// LeaveRoom 成员离开聊天室，写入系统消息并清除自己的已读状态
func (e *Engine) LeaveRoom(ctx context.Context, userId, roomId string) (*LeaveResult, error) {
	me, others, err := e.membership(roomId, userId)
	if err != nil {
		return nil, err
	}
	if !me.IsActive {
		return nil, errorx.New(errorx.CodeForbidden, "已经离开该聊天室")
	}

	now := time.Now()
	msg := &model.Message{
		Uuid:     snowflake.GenerateID(),
		RoomId:   roomId,
		SendId:   userId,
		SendName: me.Nickname,
		Type:     model.MessageTypeSystem,
		Content:  fmt.Sprintf(constants.LEAVE_MESSAGE, me.Nickname),
	}
	err = e.repos.Transaction(func(tx *repository.Repositories) error {
		n, err := tx.Participant.Leave(roomId, userId, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return errorx.New(errorx.CodeForbidden, "已经离开该聊天室")
		}
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		return tx.Participant.UpdatePreview(roomId, userIds(others), msg.Content, msg.CreatedAt)
	})
	if err != nil {
		if !errorx.IsForbidden(err) {
			zap.L().Error("离开聊天室失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
		}
		return nil, err
	}

	if err := e.readState.DeleteState(ctx, roomId, userId); err != nil {
		zap.L().Warn("清除已读状态失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
	}
	if err := e.presence.ClearCurrentRoomIf(ctx, userId, roomId); err != nil {
		zap.L().Warn("清除当前聊天室指针失败", zap.String("room_id", roomId), zap.String("user_id", userId), zap.Error(err))
	}

	payload := toMessageRespond(msg)
	return &LeaveResult{
		Message: payload,
		Delivery: Delivery{
			Audience: AudienceRoom,
			Event:    EventSystem,
			RoomId:   roomId,
			UserId:   userId,
			Payload:  payload,
		},
	}, nil
}

// membership 返回用户自己的成员记录和其他成员
// 聊天室不存在返回 CodeNotFound，不是成员返回 CodeForbidden
func (e *Engine) membership(roomId, userId string) (*model.Participant, []model.Participant, error) {
	if _, err := e.repos.Room.FindByUuid(roomId); err != nil {
		return nil, nil, err
	}
	members, err := e.repos.Participant.FindByRoom(roomId)
	if err != nil {
		return nil, nil, err
	}
	var me *model.Participant
	others := make([]model.Participant, 0, 1)
	for i := range members {
		if members[i].UserId == userId {
			me = &members[i]
			continue
		}
		others = append(others, members[i])
	}
	if me == nil {
		return nil, nil, errorx.New(errorx.CodeForbidden, "不是该聊天室成员")
	}
	return me, others, nil
}

func userIds(ps []model.Participant) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.UserId)
	}
	return ids
}
