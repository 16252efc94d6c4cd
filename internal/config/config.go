// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感字段可由环境变量覆盖
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName    string `toml:"appName"`                      // 应用名称，用于日志标识等
	Host       string `toml:"host" env:"APP_HOST"`          // 服务器监听地址，如 "0.0.0.0"
	Port       int    `toml:"port" env:"APP_PORT"`          // 服务器监听端口，如 8000
	Mode       string `toml:"mode" env:"APP_MODE"`          // 运行模式："dev" 或 "release"
	InstanceId string `toml:"instanceId" env:"INSTANCE_ID"` // 实例标识，kafka 模式下作为消费组后缀
	ForceTLS   bool   `toml:"forceTLS"`                     // 是否将 HTTP 请求重定向到 HTTPS
	Locale     string `toml:"locale"`                       // 参数校验提示语言："zh" 或 "en"
}

// MysqlConfig 关系型数据库连接配置
type MysqlConfig struct {
	Driver       string `toml:"driver" env:"DB_DRIVER"`     // 数据库驱动："mysql"（默认）或 "postgres"
	Host         string `toml:"host" env:"DB_HOST"`         // 数据库服务器地址
	Port         int    `toml:"port" env:"DB_PORT"`         // 端口，MySQL 默认 3306
	User         string `toml:"user" env:"DB_USER"`         // 数据库用户名
	Password     string `toml:"password" env:"DB_PASSWORD"` // 数据库密码
	DatabaseName string `toml:"databaseName" env:"DB_NAME"` // 数据库名称
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host" env:"REDIS_HOST"`         // Redis 服务器地址
	Port     int    `toml:"port" env:"REDIS_PORT"`         // Redis 端口，默认 6379
	Password string `toml:"password" env:"REDIS_PASSWORD"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`                            // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode" env:"MESSAGE_MODE"` // 消息模式："channel" 或 "kafka"
	HostPort    string        `toml:"hostPort" env:"KAFKA_HOST_PORT"` // Kafka 服务器地址，如 "localhost:9092"
	ChatTopic   string        `toml:"chatTopic"`                      // 聊天投递主题（跨实例广播）
	NotifyTopic string        `toml:"notifyTopic"`                    // 通知主题，为空时通知只写日志
	Partition   int           `toml:"partition"`                      // 分区数
	Timeout     time.Duration `toml:"timeout"`                        // 超时时间（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret" env:"JWT_SECRET"` // JWT 签名密钥，与身份服务共享
	Issuer            string `toml:"issuer"`                  // 签发方
	AccessTokenExpiry int    `toml:"accessTokenExpiry"`       // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId" env:"SNOWFLAKE_MACHINE_ID"` // 节点 ID，范围 0-1023
}

// ChatConfig 聊天业务相关配置
type ChatConfig struct {
	CacheWorkers    int `toml:"cacheWorkers"`    // 缓存异步任务 Worker 数量
	CacheQueueSize  int `toml:"cacheQueueSize"`  // 缓存异步任务队列长度
	NotifyWorkers   int `toml:"notifyWorkers"`   // 通知投递 Worker 数量
	NotifyQueueSize int `toml:"notifyQueueSize"` // 通知投递队列长度
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	ChatConfig      `toml:"chatConfig"`
}

var (
	config     *Config
	configOnce sync.Once
)

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// LoadConfig 从候选路径加载配置文件，再用环境变量覆盖
// 找到第一个可用的配置文件即停止；.env 文件不存在时忽略
func LoadConfig(cfg *Config) error {
	var loaded bool
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, cfg); err == nil {
			loaded = true
			break
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env overrides: %w", err)
	}
	applyDefaults(cfg)

	if !loaded {
		return fmt.Errorf("could not find configuration file in any of the search paths")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.MainConfig.Mode == "" {
		cfg.MainConfig.Mode = "dev"
	}
	if cfg.MainConfig.Locale == "" {
		cfg.MainConfig.Locale = "zh"
	}
	if cfg.MysqlConfig.Driver == "" {
		cfg.MysqlConfig.Driver = "mysql"
	}
	if cfg.KafkaConfig.MessageMode == "" {
		cfg.KafkaConfig.MessageMode = "channel"
	}
	if cfg.JWTConfig.Issuer == "" {
		cfg.JWTConfig.Issuer = "market_chat"
	}
	if cfg.ChatConfig.CacheWorkers <= 0 {
		cfg.ChatConfig.CacheWorkers = 15
	}
	if cfg.ChatConfig.CacheQueueSize <= 0 {
		cfg.ChatConfig.CacheQueueSize = 3000
	}
	if cfg.ChatConfig.NotifyWorkers <= 0 {
		cfg.ChatConfig.NotifyWorkers = 4
	}
	if cfg.ChatConfig.NotifyQueueSize <= 0 {
		cfg.ChatConfig.NotifyQueueSize = 1000
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，加载失败时使用默认值
func GetConfig() *Config {
	configOnce.Do(func() {
		config = new(Config)
		_ = LoadConfig(config)
	})
	return config
}
