package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPSender publishes notifications to a durable direct exchange.
type AMQPSender struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewAMQPSender(url, exchangeName, queueName string) (*AMQPSender, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	s := &AMQPSender{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := s.setup(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return s, nil
}

func (s *AMQPSender) setup() error {
	if err := s.channel.ExchangeDeclare(s.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := s.channel.QueueDeclare(s.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key equals the queue name on a direct exchange
	if err := s.channel.QueueBind(s.queueName, s.queueName, s.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (s *AMQPSender) Send(ctx context.Context, template string, recipients []string, vars map[string]string) error {
	msg := Message{Template: template, Recipients: recipients, Variables: vars, CreatedAt: time.Now()}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, s.exchangeName, s.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (s *AMQPSender) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
