// Package mysqltest 为测试提供基于内存 SQLite 的 Repository 集合
package mysqltest

import (
	"fmt"
	"strings"
	"testing"

	"market_chat_server/internal/dao/mysql"
	"market_chat_server/internal/dao/mysql/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New 为每个测试创建独立的内存数据库，测试结束后自动关闭
// 连接池限制为 1，事务内混用外层查询会直接卡住，便于暴露用错 Repositories 的代码
func New(t testing.TB) (*repository.Repositories, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := mysql.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return repository.NewRepositories(db), db
}
