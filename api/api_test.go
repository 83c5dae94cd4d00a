package api

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yashu1412/Flight-Booking/internal/auth"
)

var registerOnce sync.Once

func setupGin(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerOnce.Do(func() {
		require.NoError(t, RegisterValidators())
	})
}

// withUser stands in for the auth middleware.
func withUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.WithIdentity(c, auth.Identity{UserID: id, Role: role})
		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }

type decoded struct {
	Success   bool            `json:"success"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Retryable bool            `json:"retryable"`
	Data      json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) decoded {
	t.Helper()
	var body decoded
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
