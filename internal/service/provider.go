// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"market_chat_server/internal/service/chat"
	"market_chat_server/internal/service/identity"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层和网关通过此结构访问业务层
type Services struct {
	Chat     ChatService       // 聊天 Service
	Identity identity.Resolver // 连接凭证解析
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收引擎依赖和身份解析器
//  2. 创建聊天引擎
//  3. 返回 Services 聚合
func NewServices(engineCfg chat.EngineConfig, resolver identity.Resolver) *Services {
	return &Services{
		Chat:     chat.NewEngine(engineCfg),
		Identity: resolver,
	}
}
