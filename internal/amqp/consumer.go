package amqp

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"kharcha/internal/log"
)

// Handler processes one ledger event. A returned error requeues the delivery.
type Handler func(ctx context.Context, evt *LedgerEvent) error

type outcome int

const (
	outcomeAck outcome = iota
	outcomeReject
	outcomeRequeue
)

// Consume reads ledger events from the queue until ctx ends or the delivery
// channel closes. Deliveries are acknowledged by hand: undecodable bodies are
// dropped, handler failures are requeued.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	channel, err := c.ensureChannel(ctx)
	if err != nil {
		return err
	}
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := settle(delivery, c.dispatch(ctx, delivery.Body, handler)); err != nil {
				c.logger.WarnContext(ctx, "Failed to settle delivery", log.FieldError, err.Error())
			}
		}
	}
}

// dispatch decodes body, runs handler and decides how to settle the delivery.
func (c *Client) dispatch(ctx context.Context, body []byte, handler Handler) outcome {
	evt, err := LedgerEventFromJSON(body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode ledger event", log.FieldError, err.Error())
		return outcomeReject
	}

	if err := handler(ctx, evt); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle ledger event",
			"type", evt.Type,
			log.FieldError, err.Error())
		return outcomeRequeue
	}

	c.logger.DebugContext(ctx, "Handled ledger event", "type", evt.Type)
	return outcomeAck
}

func settle(d amqp091.Delivery, o outcome) error {
	switch o {
	case outcomeReject:
		return d.Nack(false, false)
	case outcomeRequeue:
		return d.Nack(false, true)
	default:
		return d.Ack(false)
	}
}
