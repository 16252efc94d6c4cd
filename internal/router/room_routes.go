// Package router 提供 HTTP 路由注册
// 本文件定义聊天室相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes 注册聊天室相关路由（需要认证）
func (rt *Router) RegisterRoomRoutes(rg *gin.RouterGroup) {
	roomGroup := rg.Group("/room")
	{
		roomGroup.POST("/createRoom", rt.handlers.Room.CreateRoom)             // 买家针对商品发起聊天
		roomGroup.GET("/getRoomList", rt.handlers.Room.GetRoomList)            // 获取聊天室列表
		roomGroup.GET("/checkParticipant", rt.handlers.Room.CheckParticipant) // 是否仍在聊天室
		roomGroup.POST("/leaveRoom", rt.handlers.Room.LeaveRoom)               // 离开聊天室
	}
}
