package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/events"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/mailer"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("mail", "development").Err(err).Msg("无法读取配置文件")
		return
	}

	/**********************************************
	 * 创建 logger
	 **********************************************/
	log := logger.NewLogger("mail", cfg.Environment)

	if cfg.RabbitMQ.DSN == "" {
		log.Error().Msg("未配置 RABBITMQ_DSN")
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		log.Err(err).Msg("无法创建邮件客户端")
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		log.Err(err).Msg("无法连接到邮件服务器")
		return
	}

	m, err := mailer.New(cfg.Email.SMTP.Username)
	if err != nil {
		log.Err(err).Msg("无法创建 mailer")
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		log.Err(err).Msg("无法连接到 RabbitMQ")
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		log.Err(err).Msg("无法创建通道")
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := events.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		log.Err(err).Msg("无法声明队列")
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 不独占队列
		false,  // RabbitMQ 不支持 noLocal
		false,  // 等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		log.Err(err).Msg("无法消费消息")
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn().Msg("消息通道已关闭")
					return
				}
				log.Debug().Str("message", string(msg.Body)).Msg("收到消息")

				email, err := m.Build(msg.Body)
				if err != nil {
					if !errors.Is(err, mailer.ErrMalformedMessage) && !errors.Is(err, mailer.ErrUnsupportedType) {
						log.Err(err).Msg("无法构建邮件")
					} else {
						log.Warn().Err(err).Msg("丢弃无法处理的消息")
					}
					_ = msg.Nack(false, false)
					continue
				}

				// 发送邮件
				if err := client.DialAndSend(email); err != nil {
					log.Err(err).Msg("邮件发送失败")
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	log.Info().Str("queue", q.Name).Msg("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	log.Info().Msg("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	log.Info().Msg("mail worker 已成功关闭")
}
