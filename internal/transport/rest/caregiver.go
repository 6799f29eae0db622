package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"twocare/internal/domain"
)

const maxPhotoSize = 10 << 20

func (h *Handler) searchCaregivers(c *gin.Context) {
	var q domain.CaregiverSearch
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindErrorResponse(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}

	items, total, err := h.services.Caregiver.Search(c.Request.Context(), q)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	listSuccessResponse(c, items, total, q.Limit, q.Offset)
}

func (h *Handler) getCaregiverByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	caregiver, err := h.services.Caregiver.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, caregiver)
}

func (h *Handler) getCaregiverCalendar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	calendar, err := h.services.Caregiver.Calendar(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, calendar)
}

// getMyCalendar возвращает календарь профиля текущего пользователя.
func (h *Handler) getMyCalendar(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	calendar, err := h.services.Caregiver.SelfCalendar(c.Request.Context(), actor)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, calendar)
}

func (h *Handler) createCaregiver(c *gin.Context) {
	h.upsertCaregiver(c, domain.UpsertCreate)
}

func (h *Handler) replaceCaregiver(c *gin.Context) {
	h.upsertCaregiver(c, domain.UpsertReplace)
}

func (h *Handler) patchCaregiver(c *gin.Context) {
	h.upsertCaregiver(c, domain.UpsertMerge)
}

func (h *Handler) upsertCaregiver(c *gin.Context, mode domain.UpsertMode) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpsertCaregiverDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.bindErrorResponse(c, err)
		return
	}

	caregiver, created, err := h.services.Caregiver.Upsert(c.Request.Context(), actor, input, mode)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	upsertResponse(c, caregiver, created)
}

// uploadCaregiverPhoto принимает multipart поле "photo".
func (h *Handler) uploadCaregiverPhoto(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл фото не передан")
		return
	}
	if header.Size > maxPhotoSize {
		badRequestResponse(c, "размер фото превышает 10 МБ")
		return
	}

	file, err := header.Open()
	if err != nil {
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}

	caregiver, err := h.services.Caregiver.UploadPhoto(c.Request.Context(), actor, data, header.Filename)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, gin.H{"photo_url": caregiver.PhotoURL})
}

func (h *Handler) deleteCaregiverPhoto(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Caregiver.DeletePhoto(c.Request.Context(), actor); err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}
