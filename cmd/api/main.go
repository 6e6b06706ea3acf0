package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/cache"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/database"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/events"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/handler"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/repository"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/token"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/utils"
	"github.com/sysu-ecnc-dev/employee-registry/backend/migrations"
)

func main() {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("api", "development").Err(err).Msg("无法加载配置文件")
		return
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	log := logger.NewLogger("api", cfg.Environment)
	ctx := log.WithContext(context.Background())

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := database.Open(ctx, cfg)
	if err != nil {
		log.Err(err).Msg("无法连接到数据库")
		return
	}
	defer dbpool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Migrate(dbpool, cfg.Database.Driver); err != nil {
			log.Err(err).Msg("无法执行数据库迁移")
			return
		}
	}

	/**********************************************
	 * 创建 repository，按需包上 redis 缓存
	 **********************************************/
	var store service.EmployeeStore = repository.NewRepository(cfg, dbpool)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Err(err).Msg("无法连接到 redis")
			return
		}

		store = cache.NewEmployeeStore(store, rdb,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			time.Duration(cfg.Redis.OperationExpiration)*time.Minute,
		)
	}

	/**********************************************
	 * 连接 rabbitmq，未配置时不发布事件
	 **********************************************/
	var publisher service.EventPublisher = events.NopPublisher{}

	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			log.Err(err).Msg("无法连接到 rabbitmq")
			return
		}
		defer conn.Close()

		// 建立通道
		ch, err := conn.Channel()
		if err != nil {
			log.Err(err).Msg("无法建立通道")
			return
		}
		defer ch.Close()

		// 声明队列
		if _, err := events.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			log.Err(err).Msg("无法声明队列")
			return
		}

		// mandatory 消息无法路由时由 broker 退回
		go events.LogReturns(ch.NotifyReturn(make(chan amqp.Return, 1)), log)

		publisher = events.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	} else {
		log.Warn().Msg("未配置 rabbitmq，不会发送欢迎邮件")
	}

	/**********************************************
	 * 创建 service 和 handler
	 **********************************************/
	validate, trans, err := utils.NewValidator()
	if err != nil {
		log.Err(err).Msg("无法创建 validator")
		return
	}

	tokens, err := token.NewService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second)
	if err != nil {
		log.Err(err).Msg("无法创建 token 服务")
		return
	}

	employees := service.NewEmployeeService(store, publisher, validate)

	h := handler.NewHandler(cfg, trans, tokens, employees, log)
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     stdlog.New(log.Level(zerolog.ErrorLevel), "", 0),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("正在启动服务器...")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("无法启动服务器")
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Err(err).Msg("关闭服务器失败")
	}
	log.Info().Msg("服务器已成功关闭")
}
