// Package notify delivers side-channel messages produced by the server:
// one-time code emails and view revalidation events.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vicktor007/store-lit/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailTypeOneTimeCode tags the email jobs carrying sign-in codes.
const EmailTypeOneTimeCode = "otp_email"

// EmailJob is the JSON document put on the email queue. A separate worker
// renders and sends the actual email.
type EmailJob struct {
	Type      string `json:"type"`
	To        string `json:"to"`
	Code      string `json:"code"`
	AccountID string `json:"accountId"`
}

type Mailer interface {
	SendOneTimeCode(ctx context.Context, to, code, accountID string) error
}

// publisher is the part of *amqp.Channel the mailer needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMailer queues email jobs on a durable RabbitMQ queue.
type RabbitMailer struct {
	conn  *amqp.Connection
	ch    publisher
	queue string
}

var amqpDial = amqp.Dial

// NewRabbitMailer connects to url, opens a channel and declares queue.
func NewRabbitMailer(url, queue string) (*RabbitMailer, error) {
	conn, err := amqpDial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq declare %q: %w", queue, err)
	}
	return &RabbitMailer{conn: conn, ch: ch, queue: queue}, nil
}

func newRabbitMailerWithPublisher(p publisher, queue string) *RabbitMailer {
	return &RabbitMailer{ch: p, queue: queue}
}

func (m *RabbitMailer) SendOneTimeCode(ctx context.Context, to, code, accountID string) error {
	body, err := json.Marshal(EmailJob{Type: EmailTypeOneTimeCode, To: to, Code: code, AccountID: accountID})
	if err != nil {
		return err
	}
	err = m.ch.PublishWithContext(ctx, "", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

func (m *RabbitMailer) Close() error {
	if err := m.ch.Close(); err != nil {
		return err
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// LogMailer writes codes to the log instead of sending them. Meant for local
// runs without a broker.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOneTimeCode(ctx context.Context, to, code, accountID string) error {
	m.log.Info(ctx, "one-time code issued", "to", to, "account_id", accountID, "code", code)
	return nil
}
