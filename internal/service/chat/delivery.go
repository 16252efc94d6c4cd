package chat

import (
	"strconv"

	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/model"
)

// Audience 推送范围
type Audience string

const (
	AudienceRoom   Audience = "ROOM"   // 订阅了该聊天室的所有连接
	AudienceSender Audience = "SENDER" // 仅发送者自己的连接
)

// Event 推送给客户端的帧类型
type Event string

const (
	EventMessage Event = "message"
	EventSystem  Event = "system"
)

// Delivery 网关据此决定推送目标，网关本身不检查消息内容
// Kafka 模式下会被序列化后在实例间传递
type Delivery struct {
	Audience Audience               `json:"audience"`
	Event    Event                  `json:"event"`
	RoomId   string                 `json:"room_id"`
	UserId   string                 `json:"user_id,omitempty"`
	Payload  respond.MessageRespond `json:"payload"`
}

// SendMessageCommand 发送消息命令
type SendMessageCommand struct {
	SenderId string
	RoomId   string
	Type     model.MessageType
	Content  string
	ImageUrl string
}

// SendResult 发送结果
type SendResult struct {
	Message  respond.MessageRespond
	Blocked  bool
	Delivery Delivery
}

// LeaveResult 离开聊天室结果，Message 为系统消息
type LeaveResult struct {
	Message  respond.MessageRespond
	Delivery Delivery
}

func toMessageRespond(m *model.Message) respond.MessageRespond {
	return respond.MessageRespond{
		Uuid:          strconv.FormatInt(m.Uuid, 10),
		RoomId:        m.RoomId,
		SendId:        m.SendId,
		SendName:      m.SendName,
		Type:          string(m.Type),
		Content:       m.Content,
		ImageUrl:      m.ImageUrl,
		IsRead:        m.IsRead,
		IsBlocked:     m.IsBlocked,
		BlockedReason: m.BlockedReason,
		CreatedAt:     m.CreatedAt,
	}
}
