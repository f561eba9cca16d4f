package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// TooManyRequestsError represents rate limiting signal from the payment provider.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Unwrap lets callers treat throttling as a transient outage.
func (e TooManyRequestsError) Unwrap() error {
	return domainErrors.ErrUnavailable
}

// Gateway settles order payments.
type Gateway interface {
	Charge(ctx context.Context, order *model.Order) (model.PaymentStatus, error)
}

// SimulatedGateway approves every charge. No money moves.
type SimulatedGateway struct{}

// Charge always reports the order as paid.
func (SimulatedGateway) Charge(context.Context, *model.Order) (model.PaymentStatus, error) {
	return model.PaymentStatusPaid, nil
}

// HTTPGateway charges orders through a remote payment provider.
type HTTPGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type chargeRequest struct {
	OrderID     string              `json:"orderId"`
	OrderNumber string              `json:"orderNumber"`
	Amount      string              `json:"amount"`
	Method      model.PaymentMethod `json:"method"`
}

type chargeResponse struct {
	Status string `json:"status"`
}

// NewHTTPGateway creates HTTPGateway with default timeout.
func NewHTTPGateway(baseURL string, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment gateway url must be absolute")
	}
	return &HTTPGateway{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Charge asks the provider to settle order. A declined charge is not an
// error; it yields PaymentStatusFailed.
func (g *HTTPGateway) Charge(ctx context.Context, order *model.Order) (model.PaymentStatus, error) {
	endpoint := *g.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/payments")

	body, err := json.Marshal(chargeRequest{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Amount:      order.Total.StringFixed(2),
		Method:      order.PaymentMethod,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", order.ID)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: payment gateway: %w", domainErrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var data chargeResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", fmt.Errorf("decode payment response: %w", err)
		}
		status := model.PaymentStatus(data.Status)
		if !status.Valid() {
			return "", fmt.Errorf("unexpected payment status %q", data.Status)
		}
		return status, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return model.PaymentStatusFailed, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		raw, _ := io.ReadAll(resp.Body)
		g.logger.Error("payment request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		err := fmt.Errorf("payment gateway error: %s", resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError {
			err = errors.Join(domainErrors.ErrUnavailable, err)
		}
		return "", err
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
