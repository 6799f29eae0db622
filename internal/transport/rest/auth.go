package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"twocare/internal/domain"
)

func clientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}
}

// register создает учетную запись сиделки или получателя ухода.
func (h *Handler) register(c *gin.Context) {
	var input domain.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	id, err := h.services.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{
		"id": id,
	})
}

// obtainTokens выдает пару access/refresh по email и паролю.
func (h *Handler) obtainTokens(c *gin.Context) {
	var input domain.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Auth.ObtainTokens(c.Request.Context(), input, clientInfo(c))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

func (h *Handler) verifyToken(c *gin.Context) {
	var input domain.VerifyTokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	if err := h.services.Auth.VerifyToken(c.Request.Context(), input.Token); err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"valid": true})
}

// refreshTokens обменивает refresh token на новую пару, старая сессия удаляется.
func (h *Handler) refreshTokens(c *gin.Context) {
	var input domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Auth.RefreshTokens(c.Request.Context(), input.Refresh, clientInfo(c))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, tokens)
}
