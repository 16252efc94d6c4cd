package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market_chat_server/internal/config"
	dao "market_chat_server/internal/dao/mysql"
	myredis "market_chat_server/internal/dao/redis"
	"market_chat_server/internal/gateway/websocket"
	"market_chat_server/internal/handler"
	"market_chat_server/internal/https_server"
	"market_chat_server/internal/infrastructure/logger"
	mq "market_chat_server/internal/infrastructure/mq"
	"market_chat_server/internal/service"
	"market_chat_server/internal/service/chat"
	"market_chat_server/internal/service/identity"
	"market_chat_server/internal/service/notify"
	"market_chat_server/internal/service/presence"
	"market_chat_server/internal/service/product"
	"market_chat_server/internal/service/readstate"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/util/jwt"
	"market_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 参数校验翻译、JWT、雪花算法
	if err := handler.InitTrans(conf.MainConfig.Locale); err != nil {
		zap.L().Fatal("初始化校验翻译器失败", zap.Error(err))
	}
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.Issuer, conf.JWTConfig.AccessTokenExpiry)
	if err := snowflake.Init(conf.SnowflakeConfig.MachineID); err != nil {
		zap.L().Fatal("初始化雪花算法失败", zap.Error(err))
	}

	// 4. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.MysqlConfig.Driver))

	// 5. 初始化 Redis
	cache, err := myredis.Init(conf)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("Redis 初始化成功")

	kafkaMode := conf.KafkaConfig.MessageMode == "kafka"
	if kafkaMode {
		topics := []string{conf.KafkaConfig.ChatTopic}
		if conf.KafkaConfig.NotifyTopic != "" {
			topics = append(topics, conf.KafkaConfig.NotifyTopic)
		}
		if err := mq.EnsureTopics(&conf.KafkaConfig, topics...); err != nil {
			zap.L().Fatal("Kafka 主题初始化失败", zap.Error(err))
		}
	}

	// 6. 在线状态、已读状态、通知
	presenceTracker := presence.NewTracker(cache, constants.SESSION_TTL)
	readTracker := readstate.NewTracker(cache, presenceTracker, constants.READ_STATE_TTL)

	var inner notify.Notifier = notify.LogNotifier{}
	if kafkaMode && conf.KafkaConfig.NotifyTopic != "" {
		kafkaNotifier := notify.NewKafkaNotifier(mq.NewWriter(&conf.KafkaConfig, conf.KafkaConfig.NotifyTopic))
		defer func() { _ = kafkaNotifier.Close() }()
		inner = kafkaNotifier
	}
	notifier := notify.NewAsyncNotifier(inner, conf.ChatConfig.NotifyWorkers, conf.ChatConfig.NotifyQueueSize)

	// 7. 初始化 Service 层 (依赖注入)
	resolver := identity.NewJWTResolver(repos.User)
	services := service.NewServices(chat.EngineConfig{
		Repos:     repos,
		Products:  product.NewRepoResolver(repos.Product),
		Profiles:  resolver,
		ReadState: readTracker,
		Presence:  presenceTracker,
		Notifier:  notifier,
		Tasks:     cache,
	}, resolver)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化网关
	hub := websocket.NewHub()
	var broker websocket.MessageBroker
	if kafkaMode {
		broker = websocket.NewKafkaBroker(hub,
			mq.NewWriter(&conf.KafkaConfig, conf.KafkaConfig.ChatTopic),
			mq.NewReader(&conf.KafkaConfig, conf.KafkaConfig.ChatTopic, "chat-"+conf.MainConfig.InstanceId),
		)
	} else {
		broker = websocket.NewChannelBroker(hub)
	}
	gateway := websocket.NewGateway(websocket.Config{
		Hub:      hub,
		Broker:   broker,
		Chat:     services.Chat,
		Identity: services.Identity,
		Presence: presenceTracker,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go gateway.Run(ctx)
	zap.L().Info("网关初始化成功", zap.String("message_mode", conf.KafkaConfig.MessageMode))

	// 9. 启动 HTTP 服务
	handlers := handler.NewHandlers(services, gateway, gateway)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: https_server.Init(&conf.MainConfig, handlers),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务启动", zap.String("addr", srv.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务关闭失败", zap.Error(err))
	}
	cancel()
	if err := gateway.Close(); err != nil {
		zap.L().Error("网关关闭失败", zap.Error(err))
	}
	notifier.Close()
	if err := cache.Close(); err != nil {
		zap.L().Error("Redis 关闭失败", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
