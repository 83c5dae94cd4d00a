package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yashu1412/Flight-Booking/internal/auth"
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/service/booking"
	"github.com/yashu1412/Flight-Booking/internal/service/wallet"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Initiate(ctx context.Context, userID, flightID uuid.UUID) (*booking.Initiation, error) {
	args := m.Called(ctx, userID, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Initiation), args.Error(1)
}

func (m *MockBookingUseCase) Confirm(ctx context.Context, input booking.ConfirmInput) (*booking.Confirmation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Confirmation), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, userID uuid.UUID, code string) (*booking.Cancellation, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Cancellation), args.Error(1)
}

func (m *MockBookingUseCase) Get(ctx context.Context, userID uuid.UUID, code string) (*domain.Booking, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) History(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.BookingPage, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingPage), args.Error(1)
}

func (m *MockBookingUseCase) Statistics(ctx context.Context) (*domain.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingStats), args.Error(1)
}

func (m *MockBookingUseCase) AdminList(ctx context.Context, status domain.BookingStatus, page, limit int) (*domain.BookingPage, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingPage), args.Error(1)
}

func bookingRouter(svc booking.BookingUseCase, user uuid.UUID, role string) *gin.Engine {
	router := gin.New()
	group := router.Group("/api/bookings", withUser(user, role))
	NewBookingHandler(svc).Register(group)
	return router
}

func TestBookingHandler_initiate(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := uuid.New()
	f := sampleFlight()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/bookings/initiate",
		bytes.NewBufferString(`{"flight_id":"`+f.ID.String()+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	auth.WithIdentity(c, auth.Identity{UserID: user, Role: auth.RoleUser})

	initiation := &booking.Initiation{
		Flight: &f,
		Wallet: booking.Affordability{Balance: domain.MustParseMoney("3000"), CanAfford: true},
	}
	mockService.On("Initiate", c.Request.Context(), user, f.ID).Return(initiation, nil)

	handler.initiate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Booking initiated", body.Message)
	assert.Contains(t, string(body.Data), `"can_afford":true`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_initiate_BadBody(t *testing.T) {
	setupGin(t)
	router := bookingRouter(&MockBookingUseCase{}, uuid.New(), auth.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/initiate", bytes.NewBufferString(`{"flight_id":"AI101"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, w).Code)
}

func TestBookingHandler_confirm(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	user := uuid.New()
	router := bookingRouter(mockService, user, auth.RoleUser)
	flightID := uuid.New()

	input := booking.ConfirmInput{
		UserID:    user,
		FlightID:  flightID,
		Passenger: domain.Passenger{Name: "Asha Rao", Email: "asha@example.com", Phone: "+91 98765 43210"},
	}
	confirmation := &booking.Confirmation{
		Booking:     &domain.Booking{PNR: "K7Q2ZD", FinalPrice: domain.MustParseMoney("2750"), Status: domain.BookingStatusConfirmed},
		Transaction: &wallet.Transaction{Type: wallet.TransactionDebit, Amount: domain.MustParseMoney("2750")},
	}
	mockService.On("Confirm", mock.Anything, input).Return(confirmation, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/confirm", bytes.NewBufferString(`{
		"flight_id":"`+flightID.String()+`",
		"passenger_name":"Asha Rao",
		"passenger_email":"asha@example.com",
		"passenger_phone":"+91 98765 43210"
	}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr":"K7Q2ZD"`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_confirm_Insufficient(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	router := bookingRouter(mockService, uuid.New(), auth.RoleUser)

	mockService.On("Confirm", mock.Anything, mock.Anything).Return(nil, &domain.InsufficientBalanceError{
		Required:  domain.MustParseMoney("2750"),
		Available: domain.MustParseMoney("250"),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/confirm", bytes.NewBufferString(
		`{"flight_id":"`+uuid.NewString()+`","passenger_name":"Asha","passenger_email":"asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body.Code)
	assert.Contains(t, string(body.Data), `"shortfall":2500.00`)
}

func TestBookingHandler_cancel(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	user := uuid.New()
	router := bookingRouter(mockService, user, auth.RoleUser)

	cancellation := &booking.Cancellation{
		Booking: &domain.Booking{PNR: "K7Q2ZD", Status: domain.BookingStatusCancelled},
		Refund:  &wallet.Transaction{Type: wallet.TransactionCredit, Amount: domain.MustParseMoney("2750")},
	}
	mockService.On("Cancel", mock.Anything, user, "k7q2zd").Return(cancellation, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/bookings/k7q2zd/cancel", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"CANCELLED"`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_AlreadyCancelled(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	router := bookingRouter(mockService, uuid.New(), auth.RoleUser)

	mockService.On("Cancel", mock.Anything, mock.Anything, "K7Q2ZD").Return(nil, domain.ErrAlreadyCancelled)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/bookings/K7Q2ZD/cancel", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_CANCELLED", decode(t, w).Code)
}

func TestBookingHandler_get_MalformedPNR(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	router := bookingRouter(mockService, uuid.New(), auth.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/AB-12", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_get_NotOwned(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	user := uuid.New()
	router := bookingRouter(mockService, user, auth.RoleUser)

	mockService.On("Get", mock.Anything, user, "K7Q2ZD").Return(nil, domain.ErrBookingNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/K7Q2ZD", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_history(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}
	user := uuid.New()
	router := bookingRouter(mockService, user, auth.RoleUser)

	page := &domain.BookingPage{Bookings: []domain.Booking{{PNR: "K7Q2ZD"}}, Page: 2, Limit: 5, Total: 6}
	mockService.On("History", mock.Anything, user, 2, 5).Return(page, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/history?page=2&limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":6`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_statistics_AdminOnly(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}

	w := httptest.NewRecorder()
	bookingRouter(mockService, uuid.New(), auth.RoleUser).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/admin/stats", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	mockService.On("Statistics", mock.Anything).Return(&domain.BookingStats{TotalBookings: 4, Cancelled: 1}, nil)

	w = httptest.NewRecorder()
	bookingRouter(mockService, uuid.New(), auth.RoleAdmin).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/admin/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_bookings":4`)
}

func TestBookingHandler_adminList(t *testing.T) {
	setupGin(t)
	mockService := &MockBookingUseCase{}

	w := httptest.NewRecorder()
	bookingRouter(mockService, uuid.New(), auth.RoleUser).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/admin/all", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	page := &domain.BookingPage{Bookings: []domain.Booking{{PNR: "K7Q2ZD", Status: domain.BookingStatusCancelled}}, Page: 1, Limit: 10, Total: 1}
	mockService.On("AdminList", mock.Anything, domain.BookingStatusCancelled, 1, 10).Return(page, nil).Once()

	w = httptest.NewRecorder()
	bookingRouter(mockService, uuid.New(), auth.RoleAdmin).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/admin/all?status=CANCELLED&page=1&limit=10", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr":"K7Q2ZD"`)

	w = httptest.NewRecorder()
	bookingRouter(mockService, uuid.New(), auth.RoleAdmin).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/admin/all?status=PENDING", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}
