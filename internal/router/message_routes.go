// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.GET("/getMessageList", rt.handlers.Message.GetMessageList) // 分页获取聊天记录
		messageGroup.POST("/sendMessage", rt.handlers.Message.SendMessage)      // 发送消息
	}
}
