package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingAttempt is one recorded intent to book, used only for surge detection.
type BookingAttempt struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	FlightID    uuid.UUID
	AttemptTime time.Time
}
