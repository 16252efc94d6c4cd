package request

// CreateRoomRequest 买家针对商品发起聊天
// 使用位置:
//   - internal/handler/room_handler.go: CreateRoom
type CreateRoomRequest struct {
	ProductId string `json:"product_id" binding:"required,max=20"`
}
