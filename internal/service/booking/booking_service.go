package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/kafka"
	"github.com/yashu1412/Flight-Booking/internal/pnr"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"github.com/yashu1412/Flight-Booking/internal/service/pricing"
	"github.com/yashu1412/Flight-Booking/internal/service/wallet"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Initiate(ctx context.Context, userID, flightID uuid.UUID) (*Initiation, error)
	Confirm(ctx context.Context, input ConfirmInput) (*Confirmation, error)
	Cancel(ctx context.Context, userID uuid.UUID, code string) (*Cancellation, error)
	Get(ctx context.Context, userID uuid.UUID, code string) (*domain.Booking, error)
	History(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.BookingPage, error)
	Statistics(ctx context.Context) (*domain.BookingStats, error)
	AdminList(ctx context.Context, status domain.BookingStatus, page, limit int) (*domain.BookingPage, error)
}

type Pricer interface {
	CalculatePrice(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (pricing.PriceInfo, error)
	GetPriceInfo(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (pricing.PriceInfo, error)
}

type Wallet interface {
	Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error)
	Debit(ctx context.Context, userID uuid.UUID, amount domain.Money) (*wallet.Transaction, error)
	Credit(ctx context.Context, userID uuid.UUID, amount domain.Money) (*wallet.Transaction, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	tx                 repository.TxManager
	pricer             Pricer
	wallet             Wallet
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	defaultPageSize    int
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithDefaultPageSize(size int) BookingServiceOption {
	return func(s *BookingService) {
		if size > 0 {
			s.defaultPageSize = size
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	tx repository.TxManager,
	pricer Pricer,
	wallet Wallet,
	cache Cache,
	producer Producer,
	bookingTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		flights:         flights,
		tx:              tx,
		pricer:          pricer,
		wallet:          wallet,
		cache:           cache,
		producer:        producer,
		bookingTopic:    bookingTopic,
		defaultPageSize: 20,
		log:             log.With(zap.String("service", "booking")),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type Affordability struct {
	Balance   domain.Money `json:"balance"`
	CanAfford bool         `json:"can_afford"`
	Shortfall domain.Money `json:"shortfall"`
}

type Initiation struct {
	Flight  *domain.Flight    `json:"flight"`
	Pricing pricing.PriceInfo `json:"pricing"`
	Wallet  Affordability     `json:"wallet"`
}

type ConfirmInput struct {
	UserID    uuid.UUID
	FlightID  uuid.UUID
	Passenger domain.Passenger
}

type Confirmation struct {
	Booking     *domain.Booking     `json:"booking"`
	Transaction *wallet.Transaction `json:"wallet_transaction"`
}

type Cancellation struct {
	Booking *domain.Booking     `json:"booking"`
	Refund  *wallet.Transaction `json:"refund"`
}

// Initiate quotes the flight for the user and records the attempt. Nothing
// else is persisted.
func (s *BookingService) Initiate(ctx context.Context, userID, flightID uuid.UUID) (*Initiation, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !flight.HasSeats() {
		return nil, domain.ErrNoSeatsAvailable
	}

	price, err := s.pricer.CalculatePrice(ctx, userID, flightID, flight.BasePrice)
	if err != nil {
		return nil, err
	}

	balance, err := s.wallet.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	afford := Affordability{Balance: balance, CanAfford: balance >= price.CurrentPrice}
	if !afford.CanAfford {
		afford.Shortfall = price.CurrentPrice - balance
	}

	return &Initiation{Flight: flight, Pricing: price, Wallet: afford}, nil
}

// Confirm charges the wallet, takes a seat and writes the booking in a single
// transaction. The price comes from the non-recording preview so retries do
// not inflate surge.
func (s *BookingService) Confirm(ctx context.Context, input ConfirmInput) (*Confirmation, error) {
	passenger, err := validatePassenger(input.Passenger)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if !flight.HasSeats() {
		return nil, domain.ErrNoSeatsAvailable
	}

	price, err := s.pricer.GetPriceInfo(ctx, input.UserID, input.FlightID, flight.BasePrice)
	if err != nil {
		return nil, err
	}

	balance, err := s.wallet.Balance(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if balance < price.CurrentPrice {
		return nil, &domain.InsufficientBalanceError{Required: price.CurrentPrice, Available: balance}
	}

	booking := &domain.Booking{
		ID:              uuid.New(),
		UserID:          input.UserID,
		FlightID:        input.FlightID,
		Passenger:       passenger,
		FinalPrice:      price.CurrentPrice,
		SurgeApplied:    price.SurgeApplied,
		SurgePercentage: price.SurgePercentage,
		Status:          domain.BookingStatusConfirmed,
	}

	var debit *wallet.Transaction
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if debit, err = s.wallet.Debit(ctx, input.UserID, price.CurrentPrice); err != nil {
			return err
		}
		if err := s.flights.ReserveSeat(ctx, input.FlightID); err != nil {
			return err
		}
		return s.insertWithFreshPNR(ctx, booking)
	})
	if err != nil {
		s.log.Info("Booking confirmation failed",
			zap.String("user_id", input.UserID.String()),
			zap.String("flight_id", input.FlightID.String()),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	flight.AvailableSeats--
	booking.Flight = flight

	s.log.Info("Booking confirmed",
		zap.String("pnr", booking.PNR),
		zap.String("user_id", input.UserID.String()),
		zap.Stringer("final_price", booking.FinalPrice),
		zap.Bool("surge_applied", booking.SurgeApplied),
	)
	s.afterCommit(ctx, kafka.EventBookingConfirmed, booking)

	return &Confirmation{Booking: booking, Transaction: debit}, nil
}

// insertWithFreshPNR retries when another booking wins the PNR between the
// existence check and the insert.
func (s *BookingService) insertWithFreshPNR(ctx context.Context, booking *domain.Booking) error {
	for i := 0; i < pnr.MaxAttempts; i++ {
		code, err := pnr.GenerateUnique(ctx, s.bookings.PNRExists)
		if err != nil {
			return err
		}
		booking.PNR = code

		err = s.bookings.Create(ctx, booking)
		if errors.Is(err, domain.ErrPNRTaken) {
			s.log.Warn("PNR collided on insert, retrying", zap.String("pnr", code))
			continue
		}
		return err
	}
	return pnr.ErrExhausted
}

// Cancel refunds the final price and returns the seat. Lookup is scoped to
// the requesting user.
func (s *BookingService) Cancel(ctx context.Context, userID uuid.UUID, code string) (*Cancellation, error) {
	code = pnr.Normalize(code)
	if !pnr.Valid(code) {
		return nil, domain.ErrBookingNotFound
	}

	var (
		booking *domain.Booking
		refund  *wallet.Transaction
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if booking, err = s.bookings.LockByPNR(ctx, userID, code); err != nil {
			return err
		}
		if booking.IsCancelled() {
			return domain.ErrAlreadyCancelled
		}
		if err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}
		if refund, err = s.wallet.Credit(ctx, userID, booking.FinalPrice); err != nil {
			return err
		}
		return s.flights.ReleaseSeat(ctx, booking.FlightID)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	s.log.Info("Booking cancelled",
		zap.String("pnr", booking.PNR),
		zap.String("user_id", userID.String()),
		zap.Stringer("refund", booking.FinalPrice),
	)
	s.afterCommit(ctx, kafka.EventBookingCancelled, booking)

	return &Cancellation{Booking: booking, Refund: refund}, nil
}

func (s *BookingService) Get(ctx context.Context, userID uuid.UUID, code string) (*domain.Booking, error) {
	code = pnr.Normalize(code)
	if !pnr.Valid(code) {
		return nil, domain.ErrBookingNotFound
	}
	return s.bookings.GetByPNR(ctx, userID, code)
}

func (s *BookingService) History(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.BookingPage, error) {
	page, limit = s.pageBounds(page, limit)

	bookings, total, err := s.bookings.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &domain.BookingPage{Bookings: bookings, Page: page, Limit: limit, Total: total}, nil
}

// AdminList pages through every user's bookings. An empty status lists all.
func (s *BookingService) AdminList(ctx context.Context, status domain.BookingStatus, page, limit int) (*domain.BookingPage, error) {
	switch status {
	case "", domain.BookingStatusConfirmed, domain.BookingStatusCancelled, domain.BookingStatusCompleted:
	default:
		return nil, domain.ValidationError("unknown booking status %q", status)
	}
	page, limit = s.pageBounds(page, limit)

	bookings, total, err := s.bookings.ListAll(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &domain.BookingPage{Bookings: bookings, Page: page, Limit: limit, Total: total}, nil
}

func (s *BookingService) pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = s.defaultPageSize
	}
	return page, limit
}

func (s *BookingService) Statistics(ctx context.Context) (*domain.BookingStats, error) {
	return s.bookings.Statistics(ctx)
}

// afterCommit runs side effects that must not undo a committed booking.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, booking *domain.Booking) {
	ctx = context.WithoutCancel(ctx)

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("Failed to invalidate flights cache", zap.Error(err))
		}
	}

	if err := s.publish(ctx, eventType, booking); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.String("type", eventType),
			zap.String("pnr", booking.PNR),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}

	event := kafka.BookingEvent{
		Type:           eventType,
		PNR:            booking.PNR,
		BookingID:      booking.ID.String(),
		UserID:         booking.UserID.String(),
		FlightID:       booking.FlightID.String(),
		PassengerName:  booking.Passenger.Name,
		PassengerEmail: booking.Passenger.Email,
		FinalPrice:     booking.FinalPrice.String(),
		Status:         string(booking.Status),
		OccurredAt:     time.Now().UTC(),
	}
	if booking.Flight != nil {
		event.FlightCode = booking.Flight.Code
	}

	if err := s.producer.Publish(ctx, s.bookingTopic, booking.PNR, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.PNR, event)
	}
	return nil
}

var passengerRules = newPassengerValidator()

func newPassengerValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

func validatePassenger(p domain.Passenger) (domain.Passenger, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)

	err := passengerRules.Struct(p)
	if err == nil {
		return p, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return p, fmt.Errorf("validate passenger: %w", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return p, domain.ValidationError("%s is required", fe.Field())
	case "email":
		return p, domain.ValidationError("%s %q is not a valid email address", fe.Field(), fe.Value())
	case "max":
		return p, domain.ValidationError("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return p, domain.ValidationError("%s is invalid", fe.Field())
	}
}

var _ BookingUseCase = (*BookingService)(nil)
