package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/domain"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
	err      error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	_, c.deadline = ctx.Deadline()
	return c.err
}

func testEmployee() *domain.Employee {
	role := "Developer"
	return &domain.Employee{
		ID:         1,
		Name:       "John Doe",
		Email:      "john@example.com",
		Role:       &role,
		DateJoined: domain.NewDate(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)),
	}
}

func TestAMQPPublisher_PublishEmployeeCreated(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(ch, "employee_events", time.Second)

	require.NoError(t, p.PublishEmployeeCreated(context.Background(), testEmployee()))

	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, "employee_events", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.True(t, ch.deadline)

	var msg domain.MailMessage
	require.NoError(t, json.Unmarshal(ch.msg.Body, &msg))
	assert.Equal(t, domain.MailTypeEmployeeCreated, msg.Type)
	assert.Equal(t, "john@example.com", msg.To)
	assert.Equal(t, "John Doe", msg.Data.Name)
	assert.Nil(t, msg.Data.Department)
	assert.Equal(t, "Developer", *msg.Data.Role)
	assert.Equal(t, "2026-10-15", msg.Data.DateJoined)
}

func TestAMQPPublisher_Error(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := NewAMQPPublisher(ch, "employee_events", time.Second)

	assert.Error(t, p.PublishEmployeeCreated(context.Background(), testEmployee()))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishEmployeeCreated(context.Background(), testEmployee()))
}

func TestLogReturns(t *testing.T) {
	var buf bytes.Buffer
	log := &logger.Logger{Logger: zerolog.New(&buf)}

	returns := make(chan amqp.Return, 1)
	returns <- amqp.Return{ReplyCode: 312, ReplyText: "NO_ROUTE", RoutingKey: "employee_events", Body: []byte(`{"type":"employee_created"}`)}
	close(returns)

	done := make(chan struct{})
	go func() {
		LogReturns(returns, log)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("LogReturns did not stop after the channel was closed")
	}

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(312), entry["reply_code"])
	assert.Equal(t, "NO_ROUTE", entry["reply_text"])
	assert.Equal(t, "employee_events", entry["routing_key"])
}
