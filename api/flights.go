package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/auth"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register mounts the flight routes. Listings accept anonymous callers,
// the pricing quote needs a signed-in user.
func (h *FlightHandler) Register(router *gin.RouterGroup, optionalAuth, requireAuth gin.HandlerFunc) {
	router.GET("", optionalAuth, h.list)
	router.GET("/search", optionalAuth, h.search)
	router.GET("/cities", h.cities)
	router.GET("/airlines", h.airlines)
	router.GET("/:id", h.get)
	router.GET("/:id/pricing", requireAuth, h.quote)
}

type listQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type searchQuery struct {
	DepartureCity string `form:"departure_city"`
	ArrivalCity   string `form:"arrival_city"`
	Airline       string `form:"airline"`
	MinPrice      string `form:"min_price"`
	MaxPrice      string `form:"max_price"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=base_price departure_time airline created_at"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q searchQuery) filter() (domain.FlightFilter, error) {
	filter := domain.FlightFilter{
		DepartureCity: q.DepartureCity,
		ArrivalCity:   q.ArrivalCity,
		Airline:       q.Airline,
		SortBy:        domain.FlightSort(q.SortBy),
		Descending:    q.SortOrder == "desc",
		Limit:         q.Limit,
	}
	if q.MinPrice != "" {
		v, err := domain.ParseMoney(q.MinPrice)
		if err != nil {
			return filter, err
		}
		filter.MinPrice = v
	}
	if q.MaxPrice != "" {
		v, err := domain.ParseMoney(q.MaxPrice)
		if err != nil {
			return filter, err
		}
		filter.MaxPrice = v
	}
	return filter, nil
}

func viewer(c *gin.Context) uuid.UUID {
	if id, ok := auth.FromContext(c); ok {
		return id.UserID
	}
	return uuid.Nil
}

func (h *FlightHandler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	flights, err := h.service.List(c.Request.Context(), viewer(c), q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", flights)
}

func (h *FlightHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	filter, err := q.filter()
	if err != nil {
		badRequest(c, err)
		return
	}

	flights, err := h.service.Search(c.Request.Context(), filter, viewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", flight)
}

func (h *FlightHandler) quote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.service.Quote(c.Request.Context(), id, viewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", view)
}

func (h *FlightHandler) cities(c *gin.Context) {
	cities, err := h.service.Cities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", cities)
}

func (h *FlightHandler) airlines(c *gin.Context) {
	airlines, err := h.service.Airlines(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", airlines)
}
