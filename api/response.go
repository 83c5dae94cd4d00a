package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashu1412/Flight-Booking/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Data      any    `json:"data,omitempty"`
}

type shortfallData struct {
	Required  domain.Money `json:"required"`
	Available domain.Money `json:"available"`
	Shortfall domain.Money `json:"shortfall"`
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInsufficientBalance, domain.KindNoSeatsAvailable,
		domain.KindAlreadyCancelled, domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error body for err. Internal errors never leak their text.
func fail(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	body := errorBody{
		Code:      string(kind),
		Message:   clientMessage(kind, err),
		Retryable: domain.Retryable(err),
	}

	var insufficient *domain.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		body.Data = shortfallData{
			Required:  insufficient.Required,
			Available: insufficient.Available,
			Shortfall: insufficient.Shortfall(),
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(kind), body)
}

// clientMessage keeps driver text out of responses. The full error stays on
// the gin context for the request logger.
func clientMessage(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.KindValidation:
		return err.Error()
	case domain.KindInsufficientBalance:
		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return insufficient.Error()
		}
		return domain.ErrInsufficientBalance.Error()
	case domain.KindNotFound:
		for _, known := range []error{domain.ErrFlightNotFound, domain.ErrBookingNotFound, domain.ErrUserNotFound} {
			if errors.Is(err, known) {
				return known.Error()
			}
		}
		return domain.ErrNotFound.Error()
	case domain.KindNoSeatsAvailable:
		return domain.ErrNoSeatsAvailable.Error()
	case domain.KindAlreadyCancelled:
		return domain.ErrAlreadyCancelled.Error()
	case domain.KindConflict:
		return domain.ErrConflict.Error()
	case domain.KindTransient:
		return domain.ErrTransient.Error()
	default:
		return "internal server error"
	}
}

func badRequest(c *gin.Context, err error) {
	fail(c, domain.ValidationError("%s", err.Error()))
}
