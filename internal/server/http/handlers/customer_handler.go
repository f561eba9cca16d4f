package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CustomerHandler serves back-office customer endpoints.
type CustomerHandler struct {
	facade CustomerFacade
	logger *slog.Logger
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(facade CustomerFacade, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{facade: facade, logger: logger}
}

// List handles GET /api/admin/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	var q dto.CustomerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	customers, pagination, err := h.facade.Customers(c.Request.Context(), strings.TrimSpace(q.Search), model.Page{Number: q.Page, Limit: q.Limit})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondPage(c, toUserResponses(customers), pagination)
}

// Get handles GET /api/admin/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	details, err := h.facade.Customer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toCustomerDetailsResponse(details))
}

// Statistics handles GET /api/admin/customers/stats.
func (h *CustomerHandler) Statistics(c *gin.Context) {
	stats, err := h.facade.CustomerStatistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", dto.CustomerStatisticsResponse{
		TotalCustomers: stats.TotalCustomers,
		NewCustomers:   stats.NewCustomers,
	})
}
