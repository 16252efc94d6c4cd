package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS (mainConfig.forceTLS 开启时挂载)
// 由反向代理终止 TLS 时通过 X-Forwarded-Proto 判断，不会重复重定向
func TlsHandler(host string, port int) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:     true,
		SSLHost:         host + ":" + strconv.Itoa(port),
		SSLProxyHeaders: map[string]string{"X-Forwarded-Proto": "https"},
	})

	return func(c *gin.Context) {
		// 重定向时 Process 已写出响应并返回 error，终止后续处理链
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Debug("TLS redirection", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
