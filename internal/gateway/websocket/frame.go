package websocket

import "encoding/json"

// 客户端上行动作
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPublish     = "publish"
	ActionLeave       = "leave"
	ActionPing        = "ping"
)

// 服务端下行帧类型，message/system 与 chat.Event 取值一致
const (
	FrameConnected    = "connected"
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FrameMessage      = "message"
	FrameSystem       = "system"
	FrameError        = "error"
	FramePong         = "pong"
)

// InboundFrame 客户端发送的 JSON 帧
// publish 时 Type/Content/ImageUrl 与 HTTP 发送接口含义相同
type InboundFrame struct {
	Action   string `json:"action"`
	RoomId   string `json:"room_id"`
	Type     string `json:"type,omitempty"`
	Content  string `json:"content,omitempty"`
	ImageUrl string `json:"image_url,omitempty"`
}

// OutboundFrame 服务端推送的 JSON 帧
type OutboundFrame struct {
	Type   string `json:"type"`
	RoomId string `json:"room_id,omitempty"`
	Code   int    `json:"code,omitempty"`
	Msg    string `json:"msg,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func encodeFrame(f OutboundFrame) []byte {
	b, err := json.Marshal(f)
	if err != nil {
		// OutboundFrame 只包含可序列化字段
		b, _ = json.Marshal(OutboundFrame{Type: FrameError, Msg: err.Error()})
	}
	return b
}
