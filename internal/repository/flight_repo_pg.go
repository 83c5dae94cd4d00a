package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"go.uber.org/zap"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE substring pattern that matches s literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type FlightRepository interface {
	List(ctx context.Context, limit int) ([]domain.Flight, error)
	Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	ReserveSeat(ctx context.Context, flightID uuid.UUID) error
	ReleaseSeat(ctx context.Context, flightID uuid.UUID) error
	Cities(ctx context.Context) ([]string, error)
	Airlines(ctx context.Context) ([]string, error)
}

const flightColumns = `id, flight_id, airline, departure_city, arrival_city,
	to_char(departure_time, 'HH24:MI'), to_char(arrival_time, 'HH24:MI'),
	base_price_cents, available_seats, status, created_at, updated_at`

type PGFlightRepository struct {
	db  DB
	log *zap.Logger
}

func NewFlightRepository(db DB, log *zap.Logger) *PGFlightRepository {
	return &PGFlightRepository{db: db, log: log.With(zap.String("repository", "flight"))}
}

func (r *PGFlightRepository) List(ctx context.Context, limit int) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + `
		FROM flights
		WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY departure_time
		LIMIT $1`

	rows, err := conn(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		return nil, mapError(fmt.Errorf("list flights: %w", err), nil)
	}
	return collectFlights(rows)
}

// Search builds the WHERE clause from the non-zero filter fields. Sort
// columns come from a closed set so they are safe to interpolate.
func (r *PGFlightRepository) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	var (
		where = []string{"deleted_at IS NULL", "status = 'active'"}
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.DepartureCity != "" {
		add("departure_city ILIKE $%d", containsPattern(filter.DepartureCity))
	}
	if filter.ArrivalCity != "" {
		add("arrival_city ILIKE $%d", containsPattern(filter.ArrivalCity))
	}
	if filter.Airline != "" {
		add("airline ILIKE $%d", containsPattern(filter.Airline))
	}
	if filter.MinPrice > 0 {
		add("base_price_cents >= $%d", int64(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		add("base_price_cents <= $%d", int64(filter.MaxPrice))
	}

	order := "ASC"
	if filter.Descending {
		order = "DESC"
	}
	sortColumn := string(filter.SortBy)
	if filter.SortBy == domain.SortByBasePrice {
		sortColumn = "base_price_cents"
	}

	args = append(args, filter.Limit)
	query := fmt.Sprintf(`SELECT %s
		FROM flights
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d`, flightColumns, strings.Join(where, " AND "), sortColumn, order, len(args))

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to search flights", zap.Error(err))
		return nil, mapError(fmt.Errorf("search flights: %w", err), nil)
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	query := `SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND deleted_at IS NULL`

	f, err := scanFlight(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrFlightNotFound)
	}
	return f, nil
}

// ReserveSeat takes one seat only if one is left. The check and the
// decrement are one statement.
func (r *PGFlightRepository) ReserveSeat(ctx context.Context, flightID uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE flights
		SET available_seats = available_seats - 1, updated_at = now()
		WHERE id = $1 AND available_seats >= 1 AND deleted_at IS NULL`, flightID)
	if err != nil {
		return mapError(fmt.Errorf("reserve seat on %s: %w", flightID, err), nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoSeatsAvailable
	}
	return nil
}

func (r *PGFlightRepository) ReleaseSeat(ctx context.Context, flightID uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE flights
		SET available_seats = available_seats + 1, updated_at = now()
		WHERE id = $1`, flightID)
	if err != nil {
		return mapError(fmt.Errorf("release seat on %s: %w", flightID, err), nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) Cities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `
		SELECT departure_city FROM flights WHERE deleted_at IS NULL AND status = 'active'
		UNION
		SELECT arrival_city FROM flights WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY 1`)
}

func (r *PGFlightRepository) Airlines(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `
		SELECT DISTINCT airline FROM flights
		WHERE deleted_at IS NULL AND status = 'active'
		ORDER BY airline`)
}

func (r *PGFlightRepository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, mapError(err, nil)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err, nil)
	}
	return values, nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(
		&f.ID,
		&f.Code,
		&f.Airline,
		&f.DepartureCity,
		&f.ArrivalCity,
		&f.DepartureTime,
		&f.ArrivalTime,
		&f.BasePrice,
		&f.AvailableSeats,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, mapError(err, nil)
		}
		flights = append(flights, *f)
	}
	return flights, mapError(rows.Err(), nil)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
