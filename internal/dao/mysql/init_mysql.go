// Package mysql 提供数据访问层的初始化
// 负责建立数据库连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"market_chat_server/internal/config"
	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Init 根据配置建立数据库连接并返回 Repository 集合
// 执行步骤：
//  1. 按 driver 选择 MySQL 或 PostgreSQL 方言并构建 DSN
//  2. 建立连接并配置连接池
//  3. 执行 AutoMigrate
func Init(conf *config.MysqlConfig) (*repository.Repositories, error) {
	dialector, err := newDialector(conf)
	if err != nil {
		return nil, err
	}
	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(15)
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.L().Info("数据库连接成功",
		zap.String("driver", conf.Driver),
		zap.String("host", conf.Host),
		zap.String("database", conf.DatabaseName),
	)
	return repository.NewRepositories(db), nil
}

// Open 使用给定方言打开连接并迁移表结构
// TranslateError 打开后唯一约束冲突会被翻译为 gorm.ErrDuplicatedKey
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 自动迁移表结构，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Room{},        // 聊天室表
		&model.Participant{}, // 聊天室成员表
		&model.Message{},     // 消息表
		&model.UserInfo{},    // 用户资料表（只读）
		&model.Product{},     // 商品表（只读）
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func newDialector(conf *config.MysqlConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "", "mysql":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
		return mysqldriver.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			conf.Host, conf.Port, conf.User, conf.Password, conf.DatabaseName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}
