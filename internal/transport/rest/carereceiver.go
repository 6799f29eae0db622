package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"twocare/internal/domain"
)

func (h *Handler) getCarereceiverByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	carereceiver, err := h.services.Carereceiver.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, carereceiver)
}

func (h *Handler) createCarereceiver(c *gin.Context) {
	h.upsertCarereceiver(c, domain.UpsertCreate)
}

func (h *Handler) replaceCarereceiver(c *gin.Context) {
	h.upsertCarereceiver(c, domain.UpsertReplace)
}

func (h *Handler) patchCarereceiver(c *gin.Context) {
	h.upsertCarereceiver(c, domain.UpsertMerge)
}

func (h *Handler) upsertCarereceiver(c *gin.Context, mode domain.UpsertMode) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpsertCarereceiverDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	carereceiver, created, err := h.services.Carereceiver.Upsert(c.Request.Context(), actor, input, mode)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	upsertResponse(c, carereceiver, created)
}
