package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"twocare/internal/domain"
)

func (h *Handler) createCareRequest(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateCareRequestDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	req, err := h.services.CareRequest.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, req)
}

// getCareRequests возвращает заявки, в которых пользователь участвует, новые первыми.
func (h *Handler) getCareRequests(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var status *domain.CareRequestStatus
	if raw := c.Query("status"); raw != "" {
		s, ok := domain.ParseCareRequestStatus(raw)
		if !ok {
			badRequestResponse(c, "неизвестный статус заявки")
			return
		}
		status = &s
	}

	limit, offset := pagination(c)

	items, total, err := h.services.CareRequest.List(c.Request.Context(), actor, status, limit, offset)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	listSuccessResponse(c, items, total, limit, offset)
}

func (h *Handler) getCareRequestByID(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.services.CareRequest.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, req)
}

func (h *Handler) acceptCareRequest(c *gin.Context) {
	h.transitionCareRequest(c, h.services.CareRequest.Accept)
}

func (h *Handler) declineCareRequest(c *gin.Context) {
	h.transitionCareRequest(c, h.services.CareRequest.Decline)
}

func (h *Handler) transitionCareRequest(c *gin.Context, transition func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error)) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := transition(c.Request.Context(), actor, id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, req)
}
