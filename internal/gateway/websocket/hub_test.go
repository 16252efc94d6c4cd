package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"market_chat_server/internal/dto/respond"
	"market_chat_server/internal/service/chat"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(userId string) *UserConn {
	return &UserConn{
		UserId: userId,
		Handle: userId + "-h",
		send:   make(chan []byte, 8),
		rooms:  make(map[string]struct{}),
	}
}

func drain(c *UserConn) []OutboundFrame {
	var frames []OutboundFrame
	for {
		select {
		case b, ok := <-c.send:
			if !ok {
				return frames
			}
			var f OutboundFrame
			if err := json.Unmarshal(b, &f); err == nil {
				frames = append(frames, f)
			}
		default:
			return frames
		}
	}
}

func delivery(audience chat.Audience, roomId, userId string) chat.Delivery {
	return chat.Delivery{
		Audience: audience,
		Event:    chat.EventMessage,
		RoomId:   roomId,
		UserId:   userId,
		Payload:  respond.MessageRespond{Uuid: "1", RoomId: roomId, SendId: userId, Content: "hi"},
	}
}

func TestDispatchRoomAudience(t *testing.T) {
	hub := NewHub()
	a, b, outsider := testConn("U1"), testConn("U2"), testConn("U3")
	for _, c := range []*UserConn{a, b, outsider} {
		hub.Register(c)
	}
	hub.Subscribe("R1", a)
	hub.Subscribe("R1", b)
	assert.Equal(t, 2, hub.Subscribers("R1"))

	hub.Dispatch(delivery(chat.AudienceRoom, "R1", "U1"))

	assert.Len(t, drain(a), 1)
	frames := drain(b)
	require.Len(t, frames, 1)
	assert.Equal(t, FrameMessage, frames[0].Type)
	assert.Equal(t, "R1", frames[0].RoomId)
	assert.Empty(t, drain(outsider))
}

func TestDispatchSenderAudienceSkipsRoom(t *testing.T) {
	hub := NewHub()
	senderPhone, senderWeb, peer := testConn("U1"), testConn("U1"), testConn("U2")
	for _, c := range []*UserConn{senderPhone, senderWeb, peer} {
		hub.Register(c)
		hub.Subscribe("R1", c)
	}
	assert.Equal(t, 2, hub.Online("U1"))

	hub.Dispatch(delivery(chat.AudienceSender, "R1", "U1"))

	assert.Len(t, drain(senderPhone), 1)
	assert.Len(t, drain(senderWeb), 1)
	assert.Empty(t, drain(peer))
}

func TestUnregisterDropsSubscriptions(t *testing.T) {
	hub := NewHub()
	c := testConn("U1")
	hub.Register(c)
	hub.Subscribe("R1", c)
	hub.Subscribe("R2", c)

	assert.True(t, hub.Unsubscribe("R2", c))
	assert.False(t, hub.Unsubscribe("R2", c))

	hub.Unregister(c)
	assert.Zero(t, hub.Subscribers("R1"))
	assert.Zero(t, hub.Online("U1"))

	_, ok := <-c.send
	assert.False(t, ok, "send channel closed")

	// 已注销的连接不再收到投递
	hub.Dispatch(delivery(chat.AudienceRoom, "R1", "U2"))
}

func TestCredentialSources(t *testing.T) {
	r := httptest.NewRequest("GET", "/wss?token=q", nil)
	token, proto := credentialFrom(r)
	assert.Equal(t, "q", token)
	assert.Empty(t, proto)

	r = httptest.NewRequest("GET", "/wss", nil)
	r.Header.Set("Authorization", "Bearer h")
	token, _ = credentialFrom(r)
	assert.Equal(t, "h", token)

	r = httptest.NewRequest("GET", "/wss", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "access_token, p")
	token, proto = credentialFrom(r)
	assert.Equal(t, "p", token)
	assert.Equal(t, "p", proto)

	r = httptest.NewRequest("GET", "/wss", nil)
	token, _ = credentialFrom(r)
	assert.Empty(t, token)
}

// ==================== Kafka 代理 ====================

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue  []kafka.Message
	closed bool
}

func (r *fakeReader) ReadMessage(context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestKafkaBrokerRoundTrip(t *testing.T) {
	hub := NewHub()
	c := testConn("U2")
	hub.Register(c)
	hub.Subscribe("R1", c)

	writer := &fakeWriter{}
	broker := NewKafkaBroker(hub, writer, &fakeReader{})
	require.NoError(t, broker.Publish(context.Background(), delivery(chat.AudienceRoom, "R1", "U1")))
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, []byte("R1"), writer.msgs[0].Key)

	// 另一个实例从主题读到同一条投递
	reader := &fakeReader{queue: []kafka.Message{{Value: []byte("not json")}, writer.msgs[0]}}
	consumer := NewKafkaBroker(hub, &fakeWriter{}, reader)
	consumer.Start(context.Background())

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.Equal(t, FrameMessage, frames[0].Type)

	require.NoError(t, consumer.Close())
	assert.True(t, reader.closed)
}

func TestKafkaBrokerPublishError(t *testing.T) {
	broker := NewKafkaBroker(NewHub(), &fakeWriter{err: errors.New("broker down")}, &fakeReader{})
	err := broker.Publish(context.Background(), delivery(chat.AudienceRoom, "R1", "U1"))
	assert.Error(t, err)
}

func TestChannelBrokerRejectsAfterClose(t *testing.T) {
	broker := NewChannelBroker(NewHub())
	require.NoError(t, broker.Close())
	assert.Error(t, broker.Publish(context.Background(), delivery(chat.AudienceRoom, "R1", "U1")))
}
