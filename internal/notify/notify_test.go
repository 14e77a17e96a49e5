package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowStockEvent() *models.LowStockDetectedEvent {
	return &models.LowStockDetectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeLowStockDetected,
		},
		IngredientID:   uuid.New(),
		OwnerID:        uuid.New(),
		IngredientName: "Flour",
		Unit:           "kg",
		OnHand:         decimal.NewFromInt(3),
		Threshold:      decimal.NewFromInt(5),
	}
}

func TestSendLowStockAlert(t *testing.T) {
	var received alertPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "baker@example.com")
	require.NoError(t, n.SendLowStockAlert(context.Background(), lowStockEvent()))

	assert.Equal(t, "baker@example.com", received.To)
	assert.Equal(t, "Flour", received.IngredientName)
	assert.Equal(t, "3", received.OnHand)
	assert.Equal(t, "5", received.Threshold)
}

func TestSendLowStockAlertUnconfigured(t *testing.T) {
	n := NewNotifier("", "")

	assert.False(t, n.Configured())
	err := n.SendLowStockAlert(context.Background(), lowStockEvent())
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestSendLowStockAlertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "")
	err := n.SendLowStockAlert(context.Background(), lowStockEvent())
	assert.Error(t, err)
}
