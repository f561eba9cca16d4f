package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

const kindDeadlineExceeded = "deadline_exceeded"

var kindStatus = map[string]int{
	domainErrors.KindNotFound:           http.StatusNotFound,
	domainErrors.KindForbidden:          http.StatusForbidden,
	domainErrors.KindInvalidState:       http.StatusConflict,
	domainErrors.KindInsufficientStock:  http.StatusConflict,
	domainErrors.KindDuplicateEntry:     http.StatusConflict,
	domainErrors.KindValidation:         http.StatusBadRequest,
	domainErrors.KindInvalidCredentials: http.StatusUnauthorized,
	domainErrors.KindUnavailable:        http.StatusServiceUnavailable,
}

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return model.Identity{}
	}
	id, _ := val.(model.Identity)
	return id
}

// StatusOf maps err to an HTTP status and a stable kind.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, kindDeadlineExceeded
	case errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized, domainErrors.KindInvalidCredentials
	}
	kind := domainErrors.Kind(err)
	if status, ok := kindStatus[kind]; ok {
		return status, kind
	}
	return http.StatusInternalServerError, domainErrors.KindInternal
}

func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, kind := StatusOf(err)
	body := dto.Envelope{Kind: kind, Error: err.Error()}

	var verr *domainErrors.ValidationError
	switch {
	case errors.As(err, &verr):
		body.Error = "validation failed"
		body.Errors = verr.Fields
	case status == http.StatusInternalServerError:
		logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("request_id", middleware.RequestIDFrom(c)),
			slog.String("error", err.Error()),
		)
		body.Error = "internal server error"
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.Envelope{Error: msg, Kind: domainErrors.KindValidation})
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.Envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data any, p model.Pagination) {
	c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    data,
		Pagination: &dto.PaginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	})
}

func parseDecimal(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domainErrors.NewValidationError(map[string]string{field: "must be a number"})
	}
	return &d, nil
}

// parseDay accepts a date or an RFC 3339 timestamp. Bare dates used as an
// upper bound cover the whole day.
func parseDay(field, raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domainErrors.NewValidationError(map[string]string{field: "must be a date (YYYY-MM-DD)"})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func orderStatusParam(raw string) model.OrderStatus {
	return model.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
}
