package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client publishes and consumes the two delivery queues: chat replies and
// spreadsheet mirror requests. Both hang off one direct exchange, with the
// queue name as routing key.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	replyQueue   string
	mirrorQueue  string
}

func NewClient(url, exchangeName, replyQueue, mirrorQueue string) (*Client, error) {
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
		replyQueue:   replyQueue,
		mirrorQueue:  mirrorQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
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

	for _, queue := range []string{c.replyQueue, c.mirrorQueue} {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		err = c.channel.QueueBind(
			queue,          // queue name
			queue,          // routing key (same as queue name for direct exchange)
			c.exchangeName, // exchange
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

// PublishReply enqueues a formatted chat reply for delivery.
func (c *Client) PublishReply(ctx context.Context, msg *ReplyMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal reply message: %w", err)
	}
	if err := c.publish(ctx, c.replyQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published reply message",
		"chat_id", msg.ChatID,
		"queue", c.replyQueue)
	return nil
}

// PublishMirror enqueues a spreadsheet mirror request for a transaction.
func (c *Client) PublishMirror(ctx context.Context, msg *MirrorMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal mirror message: %w", err)
	}
	if err := c.publish(ctx, c.mirrorQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published mirror message",
		"transaction_id", msg.TransactionID,
		"queue", c.mirrorQueue)
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

// ConsumeReplies delivers reply messages to handler until ctx is done.
// A handler error nacks the message back onto the queue.
func (c *Client) ConsumeReplies(ctx context.Context, handler func(context.Context, *ReplyMessage) error) error {
	return c.consume(ctx, c.replyQueue, func(body []byte) error {
		msg, err := ReplyMessageFromJSON(body)
		if err != nil {
			return errUnmarshal{err}
		}
		return handler(ctx, msg)
	})
}

// ConsumeMirrors delivers mirror messages to handler until ctx is done.
func (c *Client) ConsumeMirrors(ctx context.Context, handler func(context.Context, *MirrorMessage) error) error {
	return c.consume(ctx, c.mirrorQueue, func(body []byte) error {
		msg, err := MirrorMessageFromJSON(body)
		if err != nil {
			return errUnmarshal{err}
		}
		return handler(ctx, msg)
	})
}

// errUnmarshal marks a poison message: rejected without requeue.
type errUnmarshal struct{ err error }

func (e errUnmarshal) Error() string { return e.err.Error() }

func (c *Client) consume(ctx context.Context, queue string, handle func([]byte) error) error {
	msgs, err := c.channel.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming %s: %w", queue, err)
	}

	slog.InfoContext(ctx, "Started consuming", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "queue", queue, "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed for %s", queue)
			}

			err := handle(delivery.Body)
			if _, poison := err.(errUnmarshal); poison {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "queue", queue, "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}
			if err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "queue", queue, "error", err)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
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
