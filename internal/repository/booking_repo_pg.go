package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	PNRExists(ctx context.Context, pnr string) (bool, error)
	GetByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error)
	LockByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error)
	ListAll(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, int, error)
	Statistics(ctx context.Context) (*domain.BookingStats, error)
}

const bookingColumns = `b.id, b.pnr, b.user_id, b.flight_id, b.passenger_name, b.passenger_email,
	b.passenger_phone, b.final_price_cents, b.surge_applied, b.surge_percentage, b.status,
	b.booking_date, b.updated_at`

const bookingWithFlightColumns = bookingColumns + `,
	f.flight_id, f.airline, f.departure_city, f.arrival_city,
	to_char(f.departure_time, 'HH24:MI'), to_char(f.arrival_time, 'HH24:MI'), f.base_price_cents`

type PGBookingRepository struct {
	db  DB
	log *zap.Logger
}

func NewBookingRepository(db DB, log *zap.Logger) *PGBookingRepository {
	return &PGBookingRepository{db: db, log: log.With(zap.String("repository", "booking"))}
}

// Create inserts a CONFIRMED booking. A PNR collision leaves the table
// untouched and returns domain.ErrPNRTaken so the caller can retry.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, pnr, user_id, flight_id, passenger_name, passenger_email,
			passenger_phone, final_price_cents, surge_applied, surge_percentage, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (pnr) DO NOTHING
		RETURNING booking_date, updated_at`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		booking.ID,
		booking.PNR,
		booking.UserID,
		booking.FlightID,
		booking.Passenger.Name,
		booking.Passenger.Email,
		booking.Passenger.Phone,
		int64(booking.FinalPrice),
		booking.SurgeApplied,
		booking.SurgePercentage,
		string(booking.Status),
	).Scan(&booking.BookingDate, &booking.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPNRTaken
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("pnr", booking.PNR),
			zap.String("user_id", booking.UserID.String()),
		)
		return mapError(fmt.Errorf("create booking %s: %w", booking.PNR, err), nil)
	}
	return nil
}

func (r *PGBookingRepository) PNRExists(ctx context.Context, pnr string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE pnr = $1)`, pnr).Scan(&exists)
	if err != nil {
		return false, mapError(fmt.Errorf("check pnr: %w", err), nil)
	}
	return exists, nil
}

// GetByPNR returns the booking with its flight. Bookings of other users are
// reported as not found.
func (r *PGBookingRepository) GetByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error) {
	query := `SELECT ` + bookingWithFlightColumns + `
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE b.pnr = $1 AND b.user_id = $2 AND b.deleted_at IS NULL`

	b, err := scanBookingWithFlight(conn(ctx, r.db).QueryRow(ctx, query, pnr, userID))
	if err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	return b, nil
}

// LockByPNR reads the booking row FOR UPDATE. It must run inside WithTx.
func (r *PGBookingRepository) LockByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.pnr = $1 AND b.user_id = $2 AND b.deleted_at IS NULL
		FOR UPDATE`

	b, err := scanBooking(conn(ctx, r.db).QueryRow(ctx, query, pnr, userID))
	if err != nil {
		return nil, mapError(err, domain.ErrBookingNotFound)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2`, string(status), bookingID)
	if err != nil {
		return mapError(fmt.Errorf("update booking %s: %w", bookingID, err), nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	var total int
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT count(*) FROM bookings
		WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&total)
	if err != nil {
		return nil, 0, mapError(fmt.Errorf("count bookings: %w", err), nil)
	}

	query := `SELECT ` + bookingWithFlightColumns + `
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE b.user_id = $1 AND b.deleted_at IS NULL
		ORDER BY b.booking_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, mapError(fmt.Errorf("list bookings: %w", err), nil)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBookingWithFlight(rows)
		if err != nil {
			return nil, 0, mapError(err, nil)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, nil)
	}
	return bookings, total, nil
}

// ListAll pages through every user's bookings, newest first. An empty status
// lists all of them.
func (r *PGBookingRepository) ListAll(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, int, error) {
	where := `b.deleted_at IS NULL`
	args := []any{}
	if status != "" {
		where += ` AND b.status = $1`
		args = append(args, string(status))
	}

	var total int
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM bookings b WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, mapError(fmt.Errorf("count all bookings: %w", err), nil)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		WHERE %s
		ORDER BY b.booking_date DESC
		LIMIT $%d OFFSET $%d`, bookingWithFlightColumns, where, len(args)+1, len(args)+2)

	rows, err := conn(ctx, r.db).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, mapError(fmt.Errorf("list all bookings: %w", err), nil)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBookingWithFlight(rows)
		if err != nil {
			return nil, 0, mapError(err, nil)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, nil)
	}
	return bookings, total, nil
}

func (r *PGBookingRepository) Statistics(ctx context.Context) (*domain.BookingStats, error) {
	var (
		stats   domain.BookingStats
		revenue int64
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT
			count(*),
			COALESCE(sum(final_price_cents) FILTER (WHERE status <> 'CANCELLED'), 0),
			count(*) FILTER (WHERE status = 'CONFIRMED'),
			count(*) FILTER (WHERE status = 'CANCELLED'),
			count(*) FILTER (WHERE surge_applied)
		FROM bookings
		WHERE deleted_at IS NULL`).Scan(
		&stats.TotalBookings,
		&revenue,
		&stats.Confirmed,
		&stats.Cancelled,
		&stats.SurgeBookings,
	)
	if err != nil {
		return nil, mapError(fmt.Errorf("booking statistics: %w", err), nil)
	}
	stats.TotalRevenue = domain.Money(revenue)
	return &stats, nil
}

func bookingDest(b *domain.Booking) []any {
	return []any{
		&b.ID,
		&b.PNR,
		&b.UserID,
		&b.FlightID,
		&b.Passenger.Name,
		&b.Passenger.Email,
		&b.Passenger.Phone,
		&b.FinalPrice,
		&b.SurgeApplied,
		&b.SurgePercentage,
		&b.Status,
		&b.BookingDate,
		&b.UpdatedAt,
	}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(bookingDest(&b)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingWithFlight(row pgx.Row) (*domain.Booking, error) {
	var (
		b domain.Booking
		f domain.Flight
	)
	dest := append(bookingDest(&b),
		&f.Code,
		&f.Airline,
		&f.DepartureCity,
		&f.ArrivalCity,
		&f.DepartureTime,
		&f.ArrivalTime,
		&f.BasePrice,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	f.ID = b.FlightID
	b.Flight = &f
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
