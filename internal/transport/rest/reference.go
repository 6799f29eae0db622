package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"twocare/internal/domain"
)

func referenceFilter(c *gin.Context) domain.ReferenceFilter {
	limit, offset := pagination(c)
	filter := domain.ReferenceFilter{
		Limit:  limit,
		Offset: offset,
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	return filter
}

func (h *Handler) getQualifications(c *gin.Context) {
	filter := referenceFilter(c)

	items, total, err := h.services.Qualification.List(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	listSuccessResponse(c, items, total, filter.Limit, filter.Offset)
}

func (h *Handler) getQualificationByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	q, err := h.services.Qualification.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, q)
}

func (h *Handler) createQualification(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateReferenceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	q, err := h.services.Qualification.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, q)
}

// updateQualification обслуживает и PUT, и PATCH: меняются только переданные поля.
func (h *Handler) updateQualification(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var input domain.UpdateReferenceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	q, err := h.services.Qualification.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, q)
}

func (h *Handler) deleteQualification(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Qualification.Delete(c.Request.Context(), actor, id); err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

func (h *Handler) getSpecializations(c *gin.Context) {
	filter := referenceFilter(c)

	items, total, err := h.services.Specialization.List(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	listSuccessResponse(c, items, total, filter.Limit, filter.Offset)
}

func (h *Handler) getSpecializationByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s, err := h.services.Specialization.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, s)
}

func (h *Handler) createSpecialization(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateReferenceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	s, err := h.services.Specialization.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, s)
}

func (h *Handler) updateSpecialization(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var input domain.UpdateReferenceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	s, err := h.services.Specialization.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, s)
}

func (h *Handler) deleteSpecialization(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Specialization.Delete(c.Request.Context(), actor, id); err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}
