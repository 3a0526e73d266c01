package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	q    string
	log  *zap.Logger
}

// NewConsumer declares exchange and queue and binds queue to key.
func NewConsumer(url, exchange, queue, key string, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(what string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	qd, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(qd.Name, key, exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	return &Consumer{conn: conn, ch: ch, q: qd.Name, log: log}, nil
}

func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.ch != nil {
		err = multierr.Append(err, c.ch.Close())
	}
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}

// Delivery is the part of amqp.Delivery a worker needs.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Handle runs handle on body and acks, or nacks with requeue when it fails.
func Handle(log *zap.Logger, d Delivery, id string, body []byte, handle func([]byte) error) {
	if err := handle(body); err != nil {
		log.Warn("message handling failed, requeueing", zap.String("message_id", id), zap.Error(err))
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Consume runs workers goroutines over the queue until ctx is done.
func (c *Consumer) Consume(ctx context.Context, workers int, handle func([]byte) error) error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("consumer is not initialized")
	}
	if workers <= 0 {
		workers = 1
	}
	if err := c.ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.q, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return
					}
					Handle(c.log, &d, d.MessageId, d.Body, handle)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}
