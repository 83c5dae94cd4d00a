// Package notify turns booking events into passenger notifications. Delivery
// is a log line; swapping in a mail transport only needs another Transport.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/yashu1412/Flight-Booking/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type Sender struct {
	transport Transport
	log       *zap.Logger
}

func NewSender(transport Transport, log *zap.Logger) *Sender {
	return &Sender{transport: transport, log: log.With(zap.String("service", "notify"))}
}

// Send skips events without a passenger address.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.PassengerEmail == "" {
		s.log.Warn("Booking event without passenger email", zap.String("pnr", event.PNR))
		return nil
	}

	msg, err := Render(event)
	if err != nil {
		s.log.Warn("Unsupported booking event", zap.String("type", event.Type), zap.String("pnr", event.PNR))
		return nil
	}

	if err := s.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver notification for %s: %w", event.PNR, err)
	}
	return nil
}

func Render(event kafka.BookingEvent) (Message, error) {
	var subject string
	var body strings.Builder

	fmt.Fprintf(&body, "Dear %s,\n\n", event.PassengerName)
	switch event.Type {
	case kafka.EventBookingConfirmed:
		subject = fmt.Sprintf("Booking confirmed: PNR %s", event.PNR)
		fmt.Fprintf(&body, "Your booking on flight %s is confirmed.\nPNR: %s\nAmount paid: %s\n",
			event.FlightCode, event.PNR, event.FinalPrice)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking cancelled: PNR %s", event.PNR)
		fmt.Fprintf(&body, "Your booking %s on flight %s was cancelled.\n%s has been refunded to your wallet.\n",
			event.PNR, event.FlightCode, event.FinalPrice)
	default:
		return Message{}, fmt.Errorf("unknown event type %q", event.Type)
	}

	return Message{To: event.PassengerEmail, Subject: subject, Body: body.String()}, nil
}

// LogTransport writes notifications to the service log.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log.With(zap.String("transport", "log"))}
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.log.Info("Notification sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
