package flights

import (
	"context"

	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/repository"
	"github.com/yashu1412/Flight-Booking/internal/service/pricing"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context, viewer uuid.UUID, limit int) ([]FlightView, error)
	Search(ctx context.Context, filter domain.FlightFilter, viewer uuid.UUID) ([]FlightView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)
	Quote(ctx context.Context, id, userID uuid.UUID) (*FlightView, error)
	Cities(ctx context.Context) ([]string, error)
	Airlines(ctx context.Context) ([]string, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, limit int) ([]domain.Flight, error)
	SetFlights(ctx context.Context, limit int, flights []domain.Flight) error
}

type Pricer interface {
	CalculatePrice(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (pricing.PriceInfo, error)
	GetPriceInfo(ctx context.Context, userID, flightID uuid.UUID, base domain.Money) (pricing.PriceInfo, error)
}

// FlightView is a flight as seen by one viewer. Pricing is set only for
// authenticated viewers.
type FlightView struct {
	domain.Flight
	Pricing *pricing.PriceInfo `json:"pricing,omitempty"`
}

type FlightService struct {
	repo         repository.FlightRepository
	cache        FlightCache
	pricer       Pricer
	defaultLimit int
	log          *zap.Logger
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, pricer Pricer, defaultLimit int, log *zap.Logger) *FlightService {
	return &FlightService{
		repo:         repo,
		cache:        cache,
		pricer:       pricer,
		defaultLimit: defaultLimit,
		log:          log.With(zap.String("service", "flights")),
	}
}

func (s *FlightService) List(ctx context.Context, viewer uuid.UUID, limit int) ([]FlightView, error) {
	if limit <= 0 || limit > 100 {
		limit = s.defaultLimit
	}

	flights, err := s.cachedList(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withPreview(ctx, flights, viewer)
}

func (s *FlightService) cachedList(ctx context.Context, limit int) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, limit)
		if err != nil {
			s.log.Warn("Flights cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, limit, flights); err != nil {
			s.log.Warn("Flights cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

// Search never records booking attempts, browsing must not trigger surge.
func (s *FlightService) Search(ctx context.Context, filter domain.FlightFilter, viewer uuid.UUID) ([]FlightView, error) {
	if filter.MinPrice > 0 && filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, domain.ValidationError("min_price must not exceed max_price")
	}

	flights, err := s.repo.Search(ctx, filter.Normalize(s.defaultLimit))
	if err != nil {
		return nil, err
	}
	return s.withPreview(ctx, flights, viewer)
}

func (s *FlightService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Quote is the flight detail view of a signed-in user. Opening it declares an
// intent to book, so the attempt is recorded.
func (s *FlightService) Quote(ctx context.Context, id, userID uuid.UUID) (*FlightView, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	price, err := s.pricer.CalculatePrice(ctx, userID, id, flight.BasePrice)
	if err != nil {
		return nil, err
	}
	return &FlightView{Flight: *flight, Pricing: &price}, nil
}

func (s *FlightService) Cities(ctx context.Context) ([]string, error) {
	return s.repo.Cities(ctx)
}

func (s *FlightService) Airlines(ctx context.Context) ([]string, error) {
	return s.repo.Airlines(ctx)
}

func (s *FlightService) withPreview(ctx context.Context, flights []domain.Flight, viewer uuid.UUID) ([]FlightView, error) {
	views := make([]FlightView, 0, len(flights))
	for _, f := range flights {
		view := FlightView{Flight: f}
		if viewer != uuid.Nil && s.pricer != nil {
			price, err := s.pricer.GetPriceInfo(ctx, viewer, f.ID, f.BasePrice)
			if err != nil {
				return nil, err
			}
			view.Pricing = &price
		}
		views = append(views, view)
	}
	return views, nil
}

var _ FlightUseCase = (*FlightService)(nil)
