package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// AuthHandler processes registration, login and profile requests.
type AuthHandler struct {
	facade AuthFacade
	logger *slog.Logger
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{facade: facade, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, token, err := h.facade.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, http.StatusCreated, "user registered successfully", dto.AuthResponse{Token: token, User: toUserResponse(user)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, token, err := h.facade.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, http.StatusOK, "login successful", dto.AuthResponse{Token: token, User: toUserResponse(user)})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.facade.Profile(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toUserResponse(user))
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.facade.UpdateProfile(c.Request.Context(), CurrentIdentity(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "profile updated", toUserResponse(user))
}

// AddAddress handles POST /api/auth/addresses.
func (h *AuthHandler) AddAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	book, err := h.facade.AddAddress(c.Request.Context(), CurrentIdentity(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "address added", toAddressResponses(book))
}

// UpdateAddress handles PUT /api/auth/addresses/:addressId.
func (h *AuthHandler) UpdateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	book, err := h.facade.UpdateAddress(c.Request.Context(), CurrentIdentity(c), c.Param("addressId"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "address updated", toAddressResponses(book))
}

// DeleteAddress handles DELETE /api/auth/addresses/:addressId.
func (h *AuthHandler) DeleteAddress(c *gin.Context) {
	book, err := h.facade.DeleteAddress(c.Request.Context(), CurrentIdentity(c), c.Param("addressId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "address deleted", toAddressResponses(book))
}
