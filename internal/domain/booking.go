package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type Passenger struct {
	Name  string `json:"passenger_name" validate:"required,max=100"`
	Email string `json:"passenger_email" validate:"required,email"`
	Phone string `json:"passenger_phone" validate:"omitempty,max=20"`
}

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	PNR             string        `json:"pnr"`
	UserID          uuid.UUID     `json:"user_id"`
	FlightID        uuid.UUID     `json:"flight_id"`
	Passenger       Passenger     `json:"passenger"`
	FinalPrice      Money         `json:"final_price"`
	SurgeApplied    bool          `json:"surge_applied"`
	SurgePercentage float64       `json:"surge_percentage"`
	Status          BookingStatus `json:"status"`
	BookingDate     time.Time     `json:"booking_date"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Flight          *Flight       `json:"flight,omitempty"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingStats is the admin dashboard summary.
type BookingStats struct {
	TotalBookings int   `json:"total_bookings"`
	TotalRevenue  Money `json:"total_revenue"`
	Confirmed     int   `json:"confirmed_bookings"`
	Cancelled     int   `json:"cancelled_bookings"`
	SurgeBookings int   `json:"surge_bookings"`
}

type BookingPage struct {
	Bookings []Booking `json:"bookings"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}
