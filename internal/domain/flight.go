package domain

import (
	"time"

	"github.com/google/uuid"
)

type FlightStatus string

const (
	FlightStatusActive    FlightStatus = "active"
	FlightStatusInactive  FlightStatus = "inactive"
	FlightStatusCancelled FlightStatus = "cancelled"
)

// Base prices are bounded by a CHECK constraint on the flights table.
var (
	MinBasePrice = NewMoney(2000, 0)
	MaxBasePrice = NewMoney(3000, 0)
)

type Flight struct {
	ID             uuid.UUID    `json:"id"`
	Code           string       `json:"flight_id"`
	Airline        string       `json:"airline"`
	DepartureCity  string       `json:"departure_city"`
	ArrivalCity    string       `json:"arrival_city"`
	DepartureTime  string       `json:"departure_time"`
	ArrivalTime    string       `json:"arrival_time"`
	BasePrice      Money        `json:"base_price"`
	AvailableSeats int          `json:"available_seats"`
	Status         FlightStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (f *Flight) HasSeats() bool {
	return f.AvailableSeats > 0
}

type FlightSort string

const (
	SortByBasePrice     FlightSort = "base_price"
	SortByDepartureTime FlightSort = "departure_time"
	SortByAirline       FlightSort = "airline"
	SortByCreatedAt     FlightSort = "created_at"
)

// FlightFilter narrows a flight search. Zero values mean "no constraint".
type FlightFilter struct {
	DepartureCity string
	ArrivalCity   string
	Airline       string
	MinPrice      Money
	MaxPrice      Money
	SortBy        FlightSort
	Descending    bool
	Limit         int
}

// Normalize fills defaults and replaces unknown sort columns.
func (f FlightFilter) Normalize(defaultLimit int) FlightFilter {
	switch f.SortBy {
	case SortByBasePrice, SortByDepartureTime, SortByAirline, SortByCreatedAt:
	default:
		f.SortBy = SortByBasePrice
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = defaultLimit
	}
	return f
}
