package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashu1412/Flight-Booking/internal/domain"
)

var flightRowColumns = []string{
	"id", "flight_id", "airline", "departure_city", "arrival_city", "departure_time", "arrival_time",
	"base_price_cents", "available_seats", "status", "created_at", "updated_at",
}

func flightRows(mock pgxmock.PgxPoolIface, flights ...domain.Flight) *pgxmock.Rows {
	rows := mock.NewRows(flightRowColumns)
	for _, f := range flights {
		rows.AddRow(f.ID, f.Code, f.Airline, f.DepartureCity, f.ArrivalCity, f.DepartureTime, f.ArrivalTime,
			f.BasePrice, f.AvailableSeats, f.Status, f.CreatedAt, f.UpdatedAt)
	}
	return rows
}

func sampleFlight() domain.Flight {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return domain.Flight{
		ID:             uuid.New(),
		Code:           "AI101",
		Airline:        "Air India",
		DepartureCity:  "Delhi",
		ArrivalCity:    "Mumbai",
		DepartureTime:  "06:00",
		ArrivalTime:    "08:15",
		BasePrice:      domain.MustParseMoney("2500"),
		AvailableSeats: 12,
		Status:         domain.FlightStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestFlightRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)
	want := sampleFlight()

	mock.ExpectQuery("FROM flights").WithArgs(want.ID).WillReturnRows(flightRows(mock, want))

	got, err := repo.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestFlightRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)
	id := uuid.New()

	mock.ExpectQuery("FROM flights").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestFlightRepository_ReserveSeat(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)
	id := uuid.New()

	mock.ExpectExec(`available_seats - 1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.ReserveSeat(context.Background(), id))

	mock.ExpectExec(`available_seats >= 1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.ReserveSeat(context.Background(), id), domain.ErrNoSeatsAvailable)
}

func TestFlightRepository_ReleaseSeat(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)
	id := uuid.New()

	mock.ExpectExec(`available_seats \+ 1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.ReleaseSeat(context.Background(), id))

	mock.ExpectExec(`available_seats \+ 1`).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.ReleaseSeat(context.Background(), id), domain.ErrFlightNotFound)
}

func TestFlightRepository_Search(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)
	f := sampleFlight()

	filter := domain.FlightFilter{
		DepartureCity: "Delhi",
		MaxPrice:      domain.MustParseMoney("2800"),
		SortBy:        domain.SortByDepartureTime,
		Descending:    true,
	}.Normalize(20)

	mock.ExpectQuery(`departure_city ILIKE \$1 AND base_price_cents <= \$2\s+ORDER BY departure_time DESC\s+LIMIT \$3`).
		WithArgs("%Delhi%", int64(280000), 20).
		WillReturnRows(flightRows(mock, f))

	got, err := repo.Search(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AI101", got[0].Code)
}

func TestFlightRepository_SearchEscapesWildcards(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)

	filter := domain.FlightFilter{DepartureCity: "_", Airline: `50%\off`}.Normalize(20)

	mock.ExpectQuery(`departure_city ILIKE \$1 AND airline ILIKE \$2`).
		WithArgs(`%\_%`, `%50\%\\off%`, 20).
		WillReturnRows(flightRows(mock))

	got, err := repo.Search(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlightRepository_SearchUnknownSortFallsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)

	filter := domain.FlightFilter{SortBy: "id; DROP TABLE flights"}.Normalize(20)

	mock.ExpectQuery(`ORDER BY base_price_cents ASC`).WithArgs(20).WillReturnRows(flightRows(mock))

	got, err := repo.Search(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlightRepository_Cities(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock, testLogger)

	mock.ExpectQuery("UNION").WillReturnRows(mock.NewRows([]string{"city"}).AddRow("Delhi").AddRow("Mumbai"))

	cities, err := repo.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Delhi", "Mumbai"}, cities)
}
