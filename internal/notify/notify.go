package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bakery-service/internal/errs"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// Notifier delivers low-stock alerts to an external webhook. An empty
// webhook URL is a valid deployment; Send then reports ErrConfiguration
// and the caller logs and moves on.
type Notifier struct {
	webhookURL string
	alertTo    string
	client     *http.Client
	logger     *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(webhookURL, alertTo string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		alertTo:    alertTo,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     util.GetLogger(),
	}
}

// Configured reports whether a webhook destination is set.
func (n *Notifier) Configured() bool {
	return n.webhookURL != ""
}

type alertPayload struct {
	To             string `json:"to,omitempty"`
	Subject        string `json:"subject"`
	IngredientID   string `json:"ingredient_id"`
	IngredientName string `json:"ingredient_name"`
	Unit           string `json:"unit"`
	OnHand         string `json:"quantity_on_hand"`
	Threshold      string `json:"low_stock_threshold"`
	Message        string `json:"message"`
}

// SendLowStockAlert posts a low-stock alert to the webhook.
func (n *Notifier) SendLowStockAlert(ctx context.Context, event *models.LowStockDetectedEvent) error {
	if !n.Configured() {
		return fmt.Errorf("no webhook URL configured: %w", errs.ErrConfiguration)
	}

	payload := alertPayload{
		To:             n.alertTo,
		Subject:        fmt.Sprintf("Low stock: %s", event.IngredientName),
		IngredientID:   event.IngredientID.String(),
		IngredientName: event.IngredientName,
		Unit:           event.Unit,
		OnHand:         event.OnHand.String(),
		Threshold:      event.Threshold.String(),
		Message: fmt.Sprintf("%s is down to %s %s, below the threshold of %s %s",
			event.IngredientName, event.OnHand, event.Unit, event.Threshold, event.Unit),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned %d", resp.StatusCode)
	}

	n.logger.Info("Low stock alert delivered",
		zap.String("ingredient", event.IngredientName),
		zap.String("webhook", n.webhookURL))
	return nil
}
