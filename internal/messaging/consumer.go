package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// ErrHandlerPanic wraps a panic raised by a handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Handler processes a single event. key is the event's Keyed value, or ""
// when the publisher did not set one.
type Handler[T any] func(ctx context.Context, key string, event *T) error

// Consumer subscribes to a topic and processes messages with a typed handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a new generic consumer for a specific event type.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start begins consuming messages from the topic.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		cancel()

		return err
	}

	c.cancel = cancel

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer[T]) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// handleMessage acks processed and malformed messages and nacks handler
// failures so the broker redelivers them. A payload that cannot be decoded
// will never succeed, so it is dropped instead of redelivered.
func (c *Consumer[T]) handleMessage(ctx context.Context, msg *message.Message) {
	key := msg.Metadata.Get(KeyMetadata)
	logger := c.logger.With(zap.String("message_id", msg.UUID), zap.String("key", key))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Warn("dropping malformed event", zap.Error(err))
		msg.Ack()

		return
	}

	if err := c.dispatch(ctx, key, &event); err != nil {
		logger.Error("failed to handle event", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()

	logger.Debug("processed event")
}

func (c *Consumer[T]) dispatch(ctx context.Context, key string, event *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return c.handler(ctx, key, event)
}

// Shutdown stops the consumer and waits for in-flight messages to complete.
// It is a no-op for a consumer that never started.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()

	<-c.done

	return nil
}
