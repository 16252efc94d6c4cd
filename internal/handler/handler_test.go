package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/service"
	"market_chat_server/internal/service/chat"
	"market_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := InitTrans("zh"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeChat 只记录调用，返回预设结果
type fakeChat struct {
	lastCmd   chat.SendMessageCommand
	lastPage  [2]int
	createErr error
}

func (f *fakeChat) CreateRoom(_ context.Context, buyerId, productId string) (*respond.RoomRespond, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &respond.RoomRespond{RoomId: "R261016abc", ProductId: productId, BuyerId: buyerId, Role: "BUYER"}, nil
}

func (f *fakeChat) ListRooms(_ context.Context, userId string) ([]respond.RoomRespond, error) {
	return []respond.RoomRespond{{RoomId: "R261016abc", BuyerId: userId}}, nil
}

func (f *fakeChat) IsParticipant(_ context.Context, roomId, userId string) (bool, error) {
	return roomId == "R261016abc" && userId == "U1", nil
}

func (f *fakeChat) SendMessage(_ context.Context, cmd chat.SendMessageCommand) (*chat.SendResult, error) {
	f.lastCmd = cmd
	msg := respond.MessageRespond{Uuid: "42", RoomId: cmd.RoomId, SendId: cmd.SenderId, Content: cmd.Content}
	return &chat.SendResult{Message: msg, Delivery: chat.Delivery{
		Audience: chat.AudienceRoom, Event: chat.EventMessage, RoomId: cmd.RoomId, UserId: cmd.SenderId, Payload: msg,
	}}, nil
}

func (f *fakeChat) GetMessages(_ context.Context, _, roomId string, page, size int) (*respond.MessagePageRespond, error) {
	f.lastPage = [2]int{page, size}
	return &respond.MessagePageRespond{Page: page, Size: size}, nil
}

func (f *fakeChat) LeaveRoom(_ context.Context, userId, roomId string) (*chat.LeaveResult, error) {
	if userId != "U1" {
		return nil, errorx.New(errorx.CodeForbidden, "已经离开该聊天室")
	}
	msg := respond.MessageRespond{RoomId: roomId, Type: "SYSTEM"}
	return &chat.LeaveResult{Message: msg, Delivery: chat.Delivery{
		Audience: chat.AudienceRoom, Event: chat.EventSystem, RoomId: roomId, UserId: userId, Payload: msg,
	}}, nil
}

var _ service.ChatService = (*fakeChat)(nil)

type recordingPublisher struct {
	deliveries []chat.Delivery
	err        error
}

func (p *recordingPublisher) Publish(_ context.Context, d chat.Delivery) error {
	p.deliveries = append(p.deliveries, d)
	return p.err
}

type envelope struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// newEngine 模拟 JWTAuth，直接写入 user_id
func newEngine(svc service.ChatService, pub Publisher, userId string) *gin.Engine {
	room := NewRoomHandler(svc, pub)
	message := NewMessageHandler(svc, pub)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userId)
		c.Next()
	})
	r.POST("/room/createRoom", room.CreateRoom)
	r.GET("/room/getRoomList", room.GetRoomList)
	r.GET("/room/checkParticipant", room.CheckParticipant)
	r.POST("/room/leaveRoom", room.LeaveRoom)
	r.GET("/message/getMessageList", message.GetMessageList)
	r.POST("/message/sendMessage", message.SendMessage)
	return r
}

func do(t *testing.T, r *gin.Engine, method, target, body string) envelope {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateRoom(t *testing.T) {
	svc := &fakeChat{}
	r := newEngine(svc, &recordingPublisher{}, "U1")

	resp := do(t, r, http.MethodPost, "/room/createRoom", `{"product_id":"P1"}`)
	assert.Equal(t, errorx.CodeSuccess, resp.Code)
	var room respond.RoomRespond
	require.NoError(t, json.Unmarshal(resp.Data, &room))
	assert.Equal(t, "P1", room.ProductId)
	assert.Equal(t, "U1", room.BuyerId)

	resp = do(t, r, http.MethodPost, "/room/createRoom", `{}`)
	assert.Equal(t, errorx.CodeInvalidParam, resp.Code)
	assert.Contains(t, string(resp.Msg), "product_id")

	svc.createErr = errorx.New(errorx.CodeNotFound, "商品不存在")
	resp = do(t, r, http.MethodPost, "/room/createRoom", `{"product_id":"P9"}`)
	assert.Equal(t, errorx.CodeNotFound, resp.Code)

	svc.createErr = errors.New("connection reset")
	resp = do(t, r, http.MethodPost, "/room/createRoom", `{"product_id":"P9"}`)
	assert.Equal(t, errorx.CodeServerBusy, resp.Code)
}

func TestCheckParticipantValidatesRoomId(t *testing.T) {
	r := newEngine(&fakeChat{}, &recordingPublisher{}, "U1")

	resp := do(t, r, http.MethodGet, "/room/checkParticipant?room_id=R261016abc", "")
	assert.Equal(t, errorx.CodeSuccess, resp.Code)
	assert.JSONEq(t, "true", string(resp.Data))

	resp = do(t, r, http.MethodGet, "/room/checkParticipant?room_id=bad-id", "")
	assert.Equal(t, errorx.CodeInvalidParam, resp.Code)
	assert.Contains(t, string(resp.Msg), "room_id")
}

func TestSendMessagePublishesDelivery(t *testing.T) {
	svc := &fakeChat{}
	pub := &recordingPublisher{}
	r := newEngine(svc, pub, "U1")

	resp := do(t, r, http.MethodPost, "/message/sendMessage",
		`{"room_id":"R261016abc","type":"TEXT","content":"안녕하세요"}`)
	assert.Equal(t, errorx.CodeSuccess, resp.Code)
	assert.Equal(t, "U1", svc.lastCmd.SenderId)
	assert.EqualValues(t, "TEXT", svc.lastCmd.Type)
	require.Len(t, pub.deliveries, 1)
	assert.Equal(t, chat.AudienceRoom, pub.deliveries[0].Audience)

	// 推送失败不影响发送结果，消息已落库
	pub.err = errors.New("broker down")
	resp = do(t, r, http.MethodPost, "/message/sendMessage",
		`{"room_id":"R261016abc","type":"TEXT","content":"again"}`)
	assert.Equal(t, errorx.CodeSuccess, resp.Code)

	resp = do(t, r, http.MethodPost, "/message/sendMessage",
		`{"room_id":"R261016abc","type":"VIDEO","content":"x"}`)
	assert.Equal(t, errorx.CodeInvalidParam, resp.Code)
	assert.Len(t, pub.deliveries, 2)
}

func TestGetMessageListBindsQuery(t *testing.T) {
	svc := &fakeChat{}
	r := newEngine(svc, &recordingPublisher{}, "U1")

	resp := do(t, r, http.MethodGet, "/message/getMessageList?room_id=R261016abc&page=2&size=10", "")
	assert.Equal(t, errorx.CodeSuccess, resp.Code)
	assert.Equal(t, [2]int{2, 10}, svc.lastPage)

	resp = do(t, r, http.MethodGet, "/message/getMessageList?room_id=R261016abc&size=500", "")
	assert.Equal(t, errorx.CodeInvalidParam, resp.Code)
}

func TestLeaveRoom(t *testing.T) {
	pub := &recordingPublisher{}
	resp := do(t, newEngine(&fakeChat{}, pub, "U1"), http.MethodPost, "/room/leaveRoom", `{"room_id":"R261016abc"}`)
	assert.Equal(t, errorx.CodeSuccess, resp.Code)
	require.Len(t, pub.deliveries, 1)
	assert.Equal(t, chat.EventSystem, pub.deliveries[0].Event)

	resp = do(t, newEngine(&fakeChat{}, pub, "U2"), http.MethodPost, "/room/leaveRoom", `{"room_id":"R261016abc"}`)
	assert.Equal(t, errorx.CodeForbidden, resp.Code)
	assert.Len(t, pub.deliveries, 1)
}
