package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "twocare/pkg/errors"
	"twocare/pkg/validator"
)

type errorResponseBody struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

type successResponseBody struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

type listResponse struct {
	Items  interface{} `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func successResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, successResponseBody{
		Status: "success",
		Data:   data,
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	successResponse(c, http.StatusCreated, data)
}

// upsertResponse отвечает 201 для нового профиля и 200 для обновленного.
func upsertResponse(c *gin.Context, data interface{}, created bool) {
	if created {
		createdResponse(c, data)
		return
	}
	successResponse(c, http.StatusOK, data)
}

func listSuccessResponse(c *gin.Context, items interface{}, total, limit, offset int) {
	successResponse(c, http.StatusOK, listResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func noContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	detailedErrorResponse(c, statusCode, message, nil)
}

func detailedErrorResponse(c *gin.Context, statusCode int, message string, details map[string]string) {
	c.AbortWithStatusJSON(statusCode, errorResponseBody{
		Status:  "error",
		Message: message,
		Code:    statusCode,
		Details: details,
	})
}

func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, message)
}

func unauthorizedResponse(c *gin.Context) {
	errorResponse(c, http.StatusUnauthorized, "требуется авторизация")
}

func internalServerErrorResponse(c *gin.Context) {
	errorResponse(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

// bindErrorResponse превращает ошибки привязки gin в ответ 400 с ошибками по полям.
func (h *Handler) bindErrorResponse(c *gin.Context, err error) {
	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) {
		detailedErrorResponse(c, http.StatusBadRequest, "ошибка валидации", validator.FieldErrors(verrs))
		return
	}

	h.logger.Warn("неверный формат данных", zap.String("path", c.Request.URL.Path), zap.Error(err))
	badRequestResponse(c, "неверный формат данных")
}

// serviceErrorResponse отображает ошибки сервисов на HTTP ответы по типу AppError.
func (h *Handler) serviceErrorResponse(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		h.logger.Error("необработанная ошибка", zap.String("path", c.Request.URL.Path), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	if appErr.Type == apperrors.ErrorTypeInternal {
		h.logger.Error(appErr.Message, zap.String("path", c.Request.URL.Path), zap.Error(appErr))
		errorResponse(c, http.StatusInternalServerError, appErr.Message)
		return
	}

	detailedErrorResponse(c, appErr.HTTPStatus(), appErr.Message, appErr.Fields)
}
