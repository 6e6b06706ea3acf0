package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
)

// Channel 是 *amqp.Channel 中发布消息所需的部分，方便测试时替换
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewAMQPPublisher(ch Channel, queue string, timeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

// DeclareQueue 声明持久化队列，api 和 mail worker 启动时都会调用
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // 持久化
		false, // 没有消费者时不自动删除
		false, // 允许多个消费者
		false, // 等待 RabbitMQ 确认
		nil,
	)
}

func NewEmployeeCreatedMessage(employee *domain.Employee) domain.MailMessage {
	return domain.MailMessage{
		Type: domain.MailTypeEmployeeCreated,
		To:   employee.Email,
		Data: domain.EmployeeMailData{
			Name:       employee.Name,
			Department: employee.Department,
			Role:       employee.Role,
			DateJoined: employee.DateJoined.String(),
		},
	}
}

func (p *AMQPPublisher) PublishEmployeeCreated(ctx context.Context, employee *domain.Employee) error {
	body, err := json.Marshal(NewEmployeeCreatedMessage(employee))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// 使用默认交换机，routing key 即队列名
	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// LogReturns 记录因 mandatory 无法路由而被 broker 退回的消息，returns 关闭时返回
func LogReturns(returns <-chan amqp.Return, log *logger.Logger) {
	for ret := range returns {
		log.Warn().
			Uint16("reply_code", ret.ReplyCode).
			Str("reply_text", ret.ReplyText).
			Str("routing_key", ret.RoutingKey).
			Str("body", string(ret.Body)).
			Msg("消息无法路由，已被退回")
	}
}

// NopPublisher 在没有配置 RabbitMQ 时使用
type NopPublisher struct{}

func (NopPublisher) PublishEmployeeCreated(ctx context.Context, employee *domain.Employee) error {
	logger.FromContext(ctx).Debug().Int64("employee_id", employee.ID).Msg("未配置消息队列，跳过事件发布")
	return nil
}
