package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashu1412/Flight-Booking/internal/domain"
)

func TestRedisCache_GetFlights_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(client, time.Minute)

	mock.ExpectGet("cache:flights:20").RedisNil()

	flights, err := c.GetFlights(context.Background(), 20)
	require.NoError(t, err)
	assert.Nil(t, flights)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetAndGetFlights(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(client, time.Minute)

	flights := []domain.Flight{{
		ID:             uuid.New(),
		Code:           "6E202",
		Airline:        "IndiGo",
		DepartureCity:  "Bengaluru",
		ArrivalCity:    "Chennai",
		DepartureTime:  "07:30",
		ArrivalTime:    "08:30",
		BasePrice:      domain.MustParseMoney("2199.50"),
		AvailableSeats: 4,
		Status:         domain.FlightStatusActive,
	}}
	payload, err := json.Marshal(flights)
	require.NoError(t, err)

	mock.ExpectSet("cache:flights:20", payload, time.Minute).SetVal("OK")
	require.NoError(t, c.SetFlights(context.Background(), 20, flights))

	mock.ExpectGet("cache:flights:20").SetVal(string(payload))
	got, err := c.GetFlights(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, flights[0].BasePrice, got[0].BasePrice)
	assert.Equal(t, flights[0].ID, got[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_InvalidateFlights(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(client, time.Minute)

	mock.ExpectScan(0, "cache:flights:*", 100).SetVal([]string{"cache:flights:20", "cache:flights:50"}, 7)
	mock.ExpectDel("cache:flights:20", "cache:flights:50").SetVal(2)
	mock.ExpectScan(7, "cache:flights:*", 100).SetVal([]string{}, 0)

	require.NoError(t, c.InvalidateFlights(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
