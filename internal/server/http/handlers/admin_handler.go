package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// AdminHandler serves back-office order endpoints.
type AdminHandler struct {
	facade AdminFacade
	logger *slog.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{facade: facade, logger: logger}
}

// Orders handles GET /api/admin/orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	var q dto.OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	from, err := parseDay("startDate", q.From, false)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	to, err := parseDay("endDate", q.To, true)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	filter := model.OrderFilter{
		Status: orderStatusParam(q.Status),
		Search: strings.TrimSpace(q.Search),
		From:   from,
		To:     to,
	}
	orders, pagination, err := h.facade.Orders(c.Request.Context(), filter, model.Page{Number: q.Page, Limit: q.Limit})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondPage(c, toOrderResponses(orders), pagination)
}

// UpdateStatus handles PUT /api/admin/orders/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "order status updated successfully", toOrderResponse(order))
}

// Statistics handles GET /api/admin/orders/stats.
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.facade.OrderStatistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toOrderStatisticsResponse(stats))
}
