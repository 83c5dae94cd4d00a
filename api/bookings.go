package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yashu1412/Flight-Booking/internal/auth"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register expects router to already require authentication.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/initiate", h.initiate)
	router.POST("/confirm", h.confirm)
	router.GET("/history", h.history)
	router.GET("/admin/stats", auth.RequireRole(auth.RoleAdmin), h.statistics)
	router.GET("/admin/all", auth.RequireRole(auth.RoleAdmin), h.adminList)
	router.GET("/:pnr", h.get)
	router.PUT("/:pnr/cancel", h.cancel)
}

type initiateRequest struct {
	FlightID string `json:"flight_id" binding:"required,uuid"`
}

type confirmRequest struct {
	FlightID       string `json:"flight_id" binding:"required,uuid"`
	PassengerName  string `json:"passenger_name" binding:"required,max=100"`
	PassengerEmail string `json:"passenger_email" binding:"required,email"`
	PassengerPhone string `json:"passenger_phone" binding:"omitempty,max=20"`
}

type pnrURI struct {
	PNR string `uri:"pnr" binding:"required,pnr"`
}

type historyQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type adminListQuery struct {
	historyQuery
	Status string `form:"status" binding:"omitempty,oneof=CONFIRMED CANCELLED COMPLETED"`
}

func currentUser(c *gin.Context) uuid.UUID {
	id, _ := auth.FromContext(c)
	return id.UserID
}

func (h *BookingHandler) initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	initiation, err := h.service.Initiate(c.Request.Context(), currentUser(c), uuid.MustParse(req.FlightID))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Booking initiated", initiation)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	confirmation, err := h.service.Confirm(c.Request.Context(), booking.ConfirmInput{
		UserID:   currentUser(c),
		FlightID: uuid.MustParse(req.FlightID),
		Passenger: domain.Passenger{
			Name:  req.PassengerName,
			Email: req.PassengerEmail,
			Phone: req.PassengerPhone,
		},
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Booking confirmed", confirmation)
}

func (h *BookingHandler) get(c *gin.Context) {
	var uri pnrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.service.Get(c.Request.Context(), currentUser(c), uri.PNR)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var uri pnrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	cancellation, err := h.service.Cancel(c.Request.Context(), currentUser(c), uri.PNR)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Booking cancelled", cancellation)
}

func (h *BookingHandler) history(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.service.History(c.Request.Context(), currentUser(c), q.Page, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", page)
}

func (h *BookingHandler) statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", stats)
}

func (h *BookingHandler) adminList(c *gin.Context) {
	var q adminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.service.AdminList(c.Request.Context(), domain.BookingStatus(q.Status), q.Page, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", page)
}
