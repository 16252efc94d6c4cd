package mysql

import (
	"testing"

	"market_chat_server/internal/config"
	"market_chat_server/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDialectorSelectsDriver(t *testing.T) {
	d, err := newDialector(&config.MysqlConfig{Driver: "mysql", Host: "127.0.0.1", Port: 3306})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = newDialector(&config.MysqlConfig{Driver: "postgres", Host: "127.0.0.1", Port: 5432})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = newDialector(&config.MysqlConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenMigratesChatTables(t *testing.T) {
	db, err := Open(sqlite.Open("file::memory:"))
	require.NoError(t, err)

	for _, table := range []interface{}{&model.Room{}, &model.Participant{}, &model.Message{}, &model.UserInfo{}, &model.Product{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Room{}, "uk_room_triple"))
}
