package request

// SendMessageRequest 发送消息
// 内容长度和类型相关的业务校验在引擎中完成，WebSocket publish 帧走同一套校验
type SendMessageRequest struct {
	RoomId   string `json:"room_id" binding:"required,roomid"`
	Type     string `json:"type" binding:"required,oneof=TEXT IMAGE"`
	Content  string `json:"content"`
	ImageUrl string `json:"image_url" binding:"omitempty,url,max=255"`
}

// GetMessageListRequest 分页获取聊天记录，page 从 1 开始
type GetMessageListRequest struct {
	RoomId string `form:"room_id" binding:"required,roomid"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Size   int    `form:"size" binding:"omitempty,min=1,max=100"`
}
