// Package memory is an in-process implementation of the repository
// interfaces. WithTx serializes all writers and restores a snapshot when the
// callback fails, which gives the same all-or-nothing outcome as a Postgres
// transaction.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/repository"
)

type txMarker struct{}

type state struct {
	flights  map[uuid.UUID]domain.Flight
	bookings map[uuid.UUID]domain.Booking
	balances map[uuid.UUID]domain.Money
	attempts []domain.BookingAttempt
}

func (s state) clone() state {
	c := state{
		flights:  make(map[uuid.UUID]domain.Flight, len(s.flights)),
		bookings: make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		balances: make(map[uuid.UUID]domain.Money, len(s.balances)),
		attempts: append([]domain.BookingAttempt(nil), s.attempts...),
	}
	for k, v := range s.flights {
		c.flights[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		st: state{
			flights:  make(map[uuid.UUID]domain.Flight),
			bookings: make(map[uuid.UUID]domain.Booking),
			balances: make(map[uuid.UUID]domain.Money),
		},
		now: time.Now,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txMarker{}).(bool)
	return v
}

// lock acquires the store mutex unless ctx already runs inside WithTx.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) AddFlight(f domain.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == "" {
		f.Status = domain.FlightStatusActive
	}
	s.st.flights[f.ID] = f
}

func (s *Store) AddUser(id uuid.UUID, balance domain.Money) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.balances[id] = balance
}

// AttemptCount returns the number of stored attempt rows.
func (s *Store) AttemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.attempts)
}

func (s *Store) Flights() *FlightRepo   { return &FlightRepo{s} }
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s} }
func (s *Store) Wallets() *WalletRepo   { return &WalletRepo{s} }
func (s *Store) Attempts() *AttemptRepo { return &AttemptRepo{s} }

type FlightRepo struct{ s *Store }

func (r *FlightRepo) List(ctx context.Context, limit int) ([]domain.Flight, error) {
	return r.Search(ctx, domain.FlightFilter{SortBy: domain.SortByDepartureTime, Limit: limit})
}

func (r *FlightRepo) Search(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	defer r.s.lock(ctx)()

	contains := func(field, q string) bool {
		return q == "" || strings.Contains(strings.ToLower(field), strings.ToLower(q))
	}

	out := make([]domain.Flight, 0)
	for _, f := range r.s.st.flights {
		if f.Status != domain.FlightStatusActive {
			continue
		}
		if !contains(f.DepartureCity, filter.DepartureCity) || !contains(f.ArrivalCity, filter.ArrivalCity) || !contains(f.Airline, filter.Airline) {
			continue
		}
		if filter.MinPrice > 0 && f.BasePrice < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && f.BasePrice > filter.MaxPrice {
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less bool
		switch filter.SortBy {
		case domain.SortByDepartureTime:
			less = a.DepartureTime < b.DepartureTime
		case domain.SortByAirline:
			less = a.Airline < b.Airline
		case domain.SortByCreatedAt:
			less = a.CreatedAt.Before(b.CreatedAt)
		default:
			less = a.BasePrice < b.BasePrice
		}
		if filter.Descending {
			return !less
		}
		return less
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *FlightRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	defer r.s.lock(ctx)()
	f, ok := r.s.st.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (r *FlightRepo) ReserveSeat(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	f, ok := r.s.st.flights[id]
	if !ok || f.AvailableSeats < 1 {
		return domain.ErrNoSeatsAvailable
	}
	f.AvailableSeats--
	f.UpdatedAt = r.s.now()
	r.s.st.flights[id] = f
	return nil
}

func (r *FlightRepo) ReleaseSeat(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	f, ok := r.s.st.flights[id]
	if !ok {
		return domain.ErrFlightNotFound
	}
	f.AvailableSeats++
	f.UpdatedAt = r.s.now()
	r.s.st.flights[id] = f
	return nil
}

func (r *FlightRepo) Cities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(f domain.Flight) []string { return []string{f.DepartureCity, f.ArrivalCity} })
}

func (r *FlightRepo) Airlines(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(f domain.Flight) []string { return []string{f.Airline} })
}

func (r *FlightRepo) distinct(ctx context.Context, pick func(domain.Flight) []string) ([]string, error) {
	defer r.s.lock(ctx)()
	seen := make(map[string]struct{})
	for _, f := range r.s.st.flights {
		if f.Status != domain.FlightStatusActive {
			continue
		}
		for _, v := range pick(f) {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.st.bookings {
		if existing.PNR == b.PNR {
			return domain.ErrPNRTaken
		}
	}
	now := r.s.now()
	b.BookingDate = now
	b.UpdatedAt = now
	stored := *b
	stored.Flight = nil
	r.s.st.bookings[b.ID] = stored
	return nil
}

func (r *BookingRepo) PNRExists(ctx context.Context, pnr string) (bool, error) {
	defer r.s.lock(ctx)()
	for _, b := range r.s.st.bookings {
		if b.PNR == pnr {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepo) GetByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error) {
	defer r.s.lock(ctx)()
	b, ok := r.find(userID, pnr)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if f, ok := r.s.st.flights[b.FlightID]; ok {
		b.Flight = &f
	}
	return &b, nil
}

func (r *BookingRepo) LockByPNR(ctx context.Context, userID uuid.UUID, pnr string) (*domain.Booking, error) {
	defer r.s.lock(ctx)()
	b, ok := r.find(userID, pnr)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepo) find(userID uuid.UUID, pnr string) (domain.Booking, bool) {
	for _, b := range r.s.st.bookings {
		if b.PNR == pnr && b.UserID == userID {
			return b, true
		}
	}
	return domain.Booking{}, false
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = r.s.now()
	r.s.st.bookings[id] = b
	return nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	defer r.s.lock(ctx)()
	mine := func(b domain.Booking) bool { return b.UserID == userID }
	return r.page(mine, limit, offset), r.count(mine), nil
}

func (r *BookingRepo) ListAll(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, int, error) {
	defer r.s.lock(ctx)()
	match := func(b domain.Booking) bool { return status == "" || b.Status == status }
	return r.page(match, limit, offset), r.count(match), nil
}

func (r *BookingRepo) count(match func(domain.Booking) bool) int {
	n := 0
	for _, b := range r.s.st.bookings {
		if match(b) {
			n++
		}
	}
	return n
}

// page must be called with the store locked.
func (r *BookingRepo) page(match func(domain.Booking) bool, limit, offset int) []domain.Booking {
	all := make([]domain.Booking, 0)
	for _, b := range r.s.st.bookings {
		if !match(b) {
			continue
		}
		if f, ok := r.s.st.flights[b.FlightID]; ok {
			b.Flight = &f
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BookingDate.After(all[j].BookingDate) })

	if offset >= len(all) {
		return []domain.Booking{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (r *BookingRepo) Statistics(ctx context.Context) (*domain.BookingStats, error) {
	defer r.s.lock(ctx)()
	var stats domain.BookingStats
	for _, b := range r.s.st.bookings {
		stats.TotalBookings++
		switch b.Status {
		case domain.BookingStatusConfirmed:
			stats.Confirmed++
		case domain.BookingStatusCancelled:
			stats.Cancelled++
		}
		if b.Status != domain.BookingStatusCancelled {
			stats.TotalRevenue += b.FinalPrice
		}
		if b.SurgeApplied {
			stats.SurgeBookings++
		}
	}
	return &stats, nil
}

type WalletRepo struct{ s *Store }

func (r *WalletRepo) Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.balances[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	return b, nil
}

// LockBalance relies on WithTx holding the store mutex.
func (r *WalletRepo) LockBalance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	return r.Balance(ctx, userID)
}

func (r *WalletRepo) SetBalance(ctx context.Context, userID uuid.UUID, balance domain.Money) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.balances[userID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.st.balances[userID] = balance
	return nil
}

type AttemptRepo struct{ s *Store }

func (r *AttemptRepo) Record(ctx context.Context, a domain.BookingAttempt) error {
	defer r.s.lock(ctx)()
	r.s.st.attempts = append(r.s.st.attempts, a)
	return nil
}

func (r *AttemptRepo) WindowStats(ctx context.Context, userID, flightID uuid.UUID, since, until time.Time) (int, time.Time, error) {
	defer r.s.lock(ctx)()
	var (
		count  int
		oldest time.Time
	)
	for _, a := range r.s.st.attempts {
		if a.UserID != userID || a.FlightID != flightID {
			continue
		}
		if a.AttemptTime.Before(since) || a.AttemptTime.After(until) {
			continue
		}
		count++
		if oldest.IsZero() || a.AttemptTime.Before(oldest) {
			oldest = a.AttemptTime
		}
	}
	return count, oldest, nil
}

func (r *AttemptRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	defer r.s.lock(ctx)()
	kept := r.s.st.attempts[:0]
	var removed int64
	for _, a := range r.s.st.attempts {
		if a.AttemptTime.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.s.st.attempts = kept
	return removed, nil
}

var (
	_ repository.TxManager         = (*Store)(nil)
	_ repository.FlightRepository  = (*FlightRepo)(nil)
	_ repository.BookingRepository = (*BookingRepo)(nil)
	_ repository.WalletRepository  = (*WalletRepo)(nil)
	_ repository.AttemptRepository = (*AttemptRepo)(nil)
)
