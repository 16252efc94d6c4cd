// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"market_chat_server/internal/config"
	"market_chat_server/internal/handler"
	"market_chat_server/internal/infrastructure/logger"
	"market_chat_server/internal/infrastructure/middleware"
	"market_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎并注册中间件和路由
// 配置顺序：
//  1. 日志和恢复中间件
//  2. CORS 跨域规则
//  3. TLS 重定向 (可选)
//  4. 业务路由
func Init(conf *config.MainConfig, handlers *handler.Handlers) *gin.Engine {
	if conf.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	// 不使用 gin.Default() 以便完全控制中间件
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Sec-WebSocket-Protocol"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 处理 SSL 时保持关闭
	if conf.ForceTLS {
		engine.Use(middleware.TlsHandler(conf.Host, conf.Port))
	}

	router.NewRouter(handlers).RegisterRoutes(engine)
	return engine
}
