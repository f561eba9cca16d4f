package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

var visibilities = map[string]model.Visibility{
	"":         model.VisibilityAvailable,
	"active":   model.VisibilityActive,
	"inactive": model.VisibilityInactive,
	"all":      model.VisibilityAll,
}

// ProductHandler serves the catalog.
type ProductHandler struct {
	facade CatalogFacade
	logger *slog.Logger
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade CatalogFacade, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{facade: facade, logger: logger}
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	filter, err := productFilter(q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	products, pagination, err := h.facade.Products(c.Request.Context(), CurrentIdentity(c), filter, model.Page{Number: q.Page, Limit: q.Limit})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondPage(c, toProductResponses(products), pagination)
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.facade.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toProductResponse(product))
}

// Featured handles GET /api/products/featured.
func (h *ProductHandler) Featured(c *gin.Context) {
	var q dto.FeaturedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	kind := model.FeaturedKind(strings.ToLower(strings.TrimSpace(q.Type)))
	products, err := h.facade.FeaturedProducts(c.Request.Context(), kind, q.Limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toProductResponses(products))
}

// AddReview handles POST /api/products/:id/reviews.
func (h *ProductHandler) AddReview(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.facade.AddReview(c.Request.Context(), CurrentIdentity(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "review added successfully", toProductResponse(product))
}

// Create handles POST /api/admin/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.facade.CreateProduct(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "product created successfully", toProductResponse(product))
}

// Update handles PUT /api/admin/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.facade.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "product updated successfully", toProductResponse(product))
}

// Delete handles DELETE /api/admin/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "product deleted successfully", nil)
}

// BulkUpdate handles PUT /api/admin/products/bulk-update.
func (h *ProductHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	n, err := h.facade.BulkUpdateProducts(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "products updated successfully", dto.BulkActiveResponse{Updated: n})
}

// Statistics handles GET /api/admin/products/stats.
func (h *ProductHandler) Statistics(c *gin.Context) {
	stats, err := h.facade.ProductStatistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", dto.ProductStatisticsResponse{
		Total:      stats.Total,
		Active:     stats.Active,
		OutOfStock: stats.OutOfStock,
		LowStock:   stats.LowStock,
	})
}

func productFilter(q dto.ProductQuery) (model.ProductFilter, error) {
	visibility, ok := visibilities[strings.ToLower(q.Visibility)]
	if !ok {
		return model.ProductFilter{}, domainErrors.NewValidationError(map[string]string{
			"status": "must be one of active, inactive, all",
		})
	}
	minPrice, err := parseDecimal("minPrice", q.MinPrice)
	if err != nil {
		return model.ProductFilter{}, err
	}
	maxPrice, err := parseDecimal("maxPrice", q.MaxPrice)
	if err != nil {
		return model.ProductFilter{}, err
	}
	return model.ProductFilter{
		Category:   strings.TrimSpace(q.Category),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		MinRating:  q.MinRating,
		Search:     strings.TrimSpace(q.Search),
		Featured:   q.Featured,
		Visibility: visibility,
		Sort:       model.ProductSort(q.Sort),
	}, nil
}
