package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.With(zap.String("component", "kafka_consumer"), zap.String("topic", topic)),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeBookingEvents decodes each message and hands it to handle. Offsets
// are committed only after handle succeeds. Undecodable messages are logged
// and skipped. It returns nil once ctx is cancelled, even mid-message.
func (c *Consumer) ConsumeBookingEvents(ctx context.Context, handle func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}

		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("Failed to decode booking event", zap.Error(err), zap.Int64("offset", msg.Offset))
		} else if err := handle(ctx, event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		// an uncommitted message is redelivered after restart
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
