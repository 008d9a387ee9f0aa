package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Routing keys within the exchange. Generated-transaction events and
// period-renewal events share the queue; consumers dispatch on key.
const (
	KeyTransactionGenerated = "transaction.generated"
	KeyPeriodRenewed        = "period.renewed"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{KeyTransactionGenerated, KeyPeriodRenewed} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue for %s: %w", key, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishTransactionGenerated publishes a generated-transaction event.
func (c *Client) PublishTransactionGenerated(ctx context.Context, msg *TransactionGeneratedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, KeyTransactionGenerated, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published transaction generated message",
		"message_id", msg.MessageID,
		"transaction_id", msg.TransactionID,
		"template_id", msg.TemplateID,
		"exchange", c.exchangeName)

	return nil
}

// PublishPeriodRenewed publishes a period-renewal event.
func (c *Client) PublishPeriodRenewed(ctx context.Context, msg *PeriodRenewedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, KeyPeriodRenewed, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published period renewed message",
		"message_id", msg.MessageID,
		"project_id", msg.ProjectID,
		"closed_at", msg.ClosedAt)

	return nil
}

// Handlers dispatches consumed deliveries by routing key. A nil handler
// acks and drops the corresponding messages.
type Handlers struct {
	TransactionGenerated func(*TransactionGeneratedMessage) error
	PeriodRenewed        func(*PeriodRenewedMessage) error
}

// Consume receives events until the context is cancelled. Messages that
// fail to decode are rejected without requeue; handler failures requeue.
func (c *Client) Consume(ctx context.Context, handlers Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			err, requeue := c.dispatch(delivery, handlers)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"routing_key", delivery.RoutingKey,
					"requeue", requeue)
				delivery.Nack(false, requeue)
				continue
			}
			delivery.Ack(false)
		}
	}
}

// dispatch routes a delivery to its handler. Decode failures are
// permanent (no requeue); handler failures are retried.
func (c *Client) dispatch(delivery amqp091.Delivery, handlers Handlers) (err error, requeue bool) {
	switch delivery.RoutingKey {
	case KeyTransactionGenerated:
		if handlers.TransactionGenerated == nil {
			return nil, false
		}
		msg, err := TransactionGeneratedMessageFromJSON(delivery.Body)
		if err != nil {
			return fmt.Errorf("unmarshal message: %w", err), false
		}
		return handlers.TransactionGenerated(msg), true
	case KeyPeriodRenewed:
		if handlers.PeriodRenewed == nil {
			return nil, false
		}
		msg, err := PeriodRenewedMessageFromJSON(delivery.Body)
		if err != nil {
			return fmt.Errorf("unmarshal message: %w", err), false
		}
		return handlers.PeriodRenewed(msg), true
	default:
		slog.Warn("Unknown routing key", "routing_key", delivery.RoutingKey)
		return nil, false
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
