package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"twocare/internal/domain"
)

func (h *Handler) createRating(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateRatingDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	rating, err := h.services.Rating.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, rating)
}

// canRate отвечает, может ли пользователь оценить сиделку. Пустое тело дает false.
func (h *Handler) canRate(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CanRateRequest
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.bindErrorResponse(c, err)
		return
	}

	allowed, err := h.services.Rating.CanRate(c.Request.Context(), actor, input.CaregiverID)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, domain.CanRateResponse{Allowed: allowed})
}

func (h *Handler) getRatingByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rating, err := h.services.Rating.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, rating)
}

// getMyRatings возвращает оценки, полученные профилем сиделки текущего пользователя.
func (h *Handler) getMyRatings(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	limit, offset := pagination(c)

	items, total, err := h.services.Rating.ListMine(c.Request.Context(), actor, limit, offset)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	listSuccessResponse(c, items, total, limit, offset)
}
