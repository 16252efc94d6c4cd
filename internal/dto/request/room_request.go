package request

// LeaveRoomRequest 离开聊天室
type LeaveRoomRequest struct {
	RoomId string `json:"room_id" binding:"required,roomid"`
}

// CheckParticipantRequest 查询是否为聊天室成员
type CheckParticipantRequest struct {
	RoomId string `form:"room_id" binding:"required,roomid"`
}
