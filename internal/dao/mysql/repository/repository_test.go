package repository_test

import (
	"fmt"
	"testing"
	"time"

	"market_chat_server/internal/dao/mysql/mysqltest"
	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/internal/model"
	"market_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, repos *repository.Repositories, uuid, buyer, seller string) {
	t.Helper()
	require.NoError(t, repos.Room.Create(&model.Room{
		Uuid: uuid, ProductId: "P" + uuid, BuyerId: buyer, SellerId: seller,
		ProductTitle: "자전거", ProductPrice: 50000,
	}))
	require.NoError(t, repos.Participant.Create([]*model.Participant{
		{RoomId: uuid, UserId: buyer, Role: model.RoleBuyer, Nickname: "buyer", IsActive: true},
		{RoomId: uuid, UserId: seller, Role: model.RoleSeller, Nickname: "seller", IsActive: true},
	}))
}

func addMessage(t *testing.T, repos *repository.Repositories, room, sender string, uuid int64, at time.Time) {
	t.Helper()
	msg := &model.Message{Uuid: uuid, RoomId: room, SendId: sender, SendName: sender, Type: model.MessageTypeText, Content: fmt.Sprintf("m%d", uuid)}
	msg.CreatedAt = at
	require.NoError(t, repos.Message.Create(msg))
}

func TestRoomTripleIsUnique(t *testing.T) {
	repos, _ := mysqltest.New(t)
	seedRoom(t, repos, "R1", "U1", "U2")

	found, err := repos.Room.FindByTriple("PR1", "U1", "U2")
	require.NoError(t, err)
	assert.Equal(t, "R1", found.Uuid)

	err = repos.Room.Create(&model.Room{Uuid: "R2", ProductId: "PR1", BuyerId: "U1", SellerId: "U2", ProductTitle: "x"})
	assert.True(t, errorx.IsConflict(err), "got %v", err)

	_, err = repos.Room.FindByTriple("PR1", "U9", "U2")
	assert.True(t, errorx.IsNotFound(err))
}

func TestLeaveIsConditional(t *testing.T) {
	repos, _ := mysqltest.New(t)
	seedRoom(t, repos, "R1", "U1", "U2")

	n, err := repos.Participant.Leave("R1", "U1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Participant.Leave("R1", "U1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	active, err := repos.Participant.ExistsActive("R1", "U1")
	require.NoError(t, err)
	assert.False(t, active)

	p, err := repos.Participant.FindByRoomAndUser("R1", "U1")
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.True(t, p.LeftAt.Valid)

	active, err = repos.Participant.ExistsActive("R1", "U2")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestMarkReadUpToOnlyTouchesOthersUpToWatermark(t *testing.T) {
	repos, _ := mysqltest.New(t)
	seedRoom(t, repos, "R1", "U1", "U2")

	latest, err := repos.Message.LatestId("R1")
	require.NoError(t, err)
	assert.Zero(t, latest)

	// 时间戳故意写在未来，水位只看自增 ID
	future := time.Now().Add(time.Hour)
	addMessage(t, repos, "R1", "U2", 1, future)
	addMessage(t, repos, "R1", "U2", 2, future)
	addMessage(t, repos, "R1", "U1", 3, future)

	latest, err = repos.Message.LatestId("R1")
	require.NoError(t, err)
	require.NotZero(t, latest)

	addMessage(t, repos, "R1", "U2", 4, time.Now().Add(-time.Hour))

	n, err := repos.Message.MarkReadUpTo("R1", "U1", latest)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err := repos.Message.CountUnread("R1", "U1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// 再次执行不会重复计数
	n, err = repos.Message.MarkReadUpTo("R1", "U1", latest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFindPageByRoomIsNewestFirst(t *testing.T) {
	repos, _ := mysqltest.New(t)
	seedRoom(t, repos, "R1", "U1", "U2")
	now := time.Now()
	for i := int64(1); i <= 5; i++ {
		addMessage(t, repos, "R1", "U1", i, now)
	}

	page, err := repos.Message.FindPageByRoom("R1", 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].Uuid)
	assert.Equal(t, int64(4), page[1].Uuid)

	page, err = repos.Message.FindPageByRoom("R1", 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].Uuid)

	total, err := repos.Message.CountByRoom("R1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestFindActiveByUserOrdersByLastMessage(t *testing.T) {
	repos, _ := mysqltest.New(t)
	seedRoom(t, repos, "R1", "U1", "U2")
	seedRoom(t, repos, "R2", "U1", "U3")
	seedRoom(t, repos, "R3", "U1", "U4")

	now := time.Now()
	require.NoError(t, repos.Participant.UpdatePreview("R1", []string{"U1", "U2"}, "old", now.Add(-time.Hour)))
	require.NoError(t, repos.Participant.UpdatePreview("R2", []string{"U1", "U3"}, "new", now))
	_, err := repos.Participant.Leave("R3", "U1", now)
	require.NoError(t, err)

	ps, err := repos.Participant.FindActiveByUser("U1")
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "R2", ps[0].RoomId)
	assert.Equal(t, "new", ps[0].LastMessage)
	assert.Equal(t, "R1", ps[1].RoomId)
}

func TestTransactionRollsBack(t *testing.T) {
	repos, _ := mysqltest.New(t)

	err := repos.Transaction(func(tx *repository.Repositories) error {
		require.NoError(t, tx.Room.Create(&model.Room{Uuid: "R1", ProductId: "P1", BuyerId: "U1", SellerId: "U2", ProductTitle: "x"}))
		return errorx.New(errorx.CodeForbidden, "abort")
	})
	assert.True(t, errorx.IsForbidden(err))

	_, err = repos.Room.FindByUuid("R1")
	assert.True(t, errorx.IsNotFound(err))
}
