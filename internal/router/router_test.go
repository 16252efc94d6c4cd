package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"market_chat_server/internal/handler"
	"market_chat_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRoutesRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// 未认证的请求在到达 Handler 之前就被拦截，不需要真实的 Service
	NewRouter(handler.NewHandlers(&service.Services{}, nil, nil)).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/room/createRoom"},
		{http.MethodGet, "/room/getRoomList"},
		{http.MethodGet, "/room/checkParticipant"},
		{http.MethodPost, "/room/leaveRoom"},
		{http.MethodGet, "/message/getMessageList"},
		{http.MethodPost, "/message/sendMessage"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}
