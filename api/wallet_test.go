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
	"github.com/yashu1412/Flight-Booking/internal/domain"
	"github.com/yashu1412/Flight-Booking/internal/service/wallet"
)

type MockWalletUseCase struct {
	mock.Mock
}

func (m *MockWalletUseCase) Balance(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Money), args.Error(1)
}

func (m *MockWalletUseCase) Check(ctx context.Context, userID uuid.UUID, amount domain.Money) (wallet.Sufficiency, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(wallet.Sufficiency), args.Error(1)
}

func (m *MockWalletUseCase) Reset(ctx context.Context, userID uuid.UUID) (domain.Money, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Money), args.Error(1)
}

func walletRouter(svc WalletUseCase, user uuid.UUID) *gin.Engine {
	router := gin.New()
	NewWalletHandler(svc).Register(router.Group("/api/wallet", withUser(user, "user")))
	return router
}

func TestWalletHandler_balance(t *testing.T) {
	setupGin(t)
	mockService := &MockWalletUseCase{}
	user := uuid.New()

	mockService.On("Balance", mock.Anything, user).Return(domain.MustParseMoney("250"), nil)

	w := httptest.NewRecorder()
	walletRouter(mockService, user).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wallet/balance", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":250.00}`, string(decode(t, w).Data))
}

func TestWalletHandler_check(t *testing.T) {
	setupGin(t)
	mockService := &MockWalletUseCase{}
	user := uuid.New()

	amount := domain.MustParseMoney("2750.50")
	mockService.On("Check", mock.Anything, user, amount).Return(wallet.Sufficiency{
		Balance:   domain.MustParseMoney("250"),
		Required:  amount,
		Shortfall: domain.MustParseMoney("2500.50"),
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/wallet/check", bytes.NewBufferString(`{"amount":"2750.50"}`))
	req.Header.Set("Content-Type", "application/json")
	walletRouter(mockService, user).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_sufficient":false`)
	mockService.AssertExpectations(t)
}

func TestWalletHandler_check_BadAmount(t *testing.T) {
	setupGin(t)
	mockService := &MockWalletUseCase{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/wallet/check", bytes.NewBufferString(`{"amount":"12.345"}`))
	req.Header.Set("Content-Type", "application/json")
	walletRouter(mockService, uuid.New()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletHandler_reset(t *testing.T) {
	setupGin(t)
	mockService := &MockWalletUseCase{}
	user := uuid.New()

	mockService.On("Reset", mock.Anything, user).Return(domain.MustParseMoney("50000"), nil)

	w := httptest.NewRecorder()
	walletRouter(mockService, user).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/wallet/reset", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Wallet reset", decode(t, w).Message)
}
