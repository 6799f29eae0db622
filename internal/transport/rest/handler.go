package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/service"
)

// HealthCheck - зависимость, которую проверяет /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	checks   []HealthCheck
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, checks ...HealthCheck) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		checks:   checks,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	router.GET("/health", h.health)

	router.POST("/register", h.register)

	token := router.Group("/token")
	{
		token.POST("/", h.obtainTokens)
		token.POST("/verify/", h.verifyToken)
		token.POST("/refresh/", h.refreshTokens)
	}

	// публичный каталог сиделок
	router.GET("/caregiver", h.searchCaregivers)

	caregiver := router.Group("/caregiver", h.authMiddleware())
	{
		caregiver.POST("/", h.createCaregiver)
		caregiver.PUT("/", h.replaceCaregiver)
		caregiver.PATCH("/", h.patchCaregiver)
		caregiver.GET("/my-calendar", h.getMyCalendar)
		caregiver.POST("/photo", h.uploadCaregiverPhoto)
		caregiver.DELETE("/photo", h.deleteCaregiverPhoto)
		caregiver.GET("/:id", h.getCaregiverByID)
		caregiver.GET("/:id/calendar", h.getCaregiverCalendar)
	}

	carereceiver := router.Group("/carereceiver", h.authMiddleware())
	{
		carereceiver.POST("/", h.createCarereceiver)
		carereceiver.PUT("/", h.replaceCarereceiver)
		carereceiver.PATCH("/", h.patchCarereceiver)
		carereceiver.GET("/:id", h.getCarereceiverByID)
	}

	qualification := router.Group("/qualification", h.authMiddleware())
	{
		qualification.POST("/", h.createQualification)
		qualification.GET("/", h.getQualifications)
		qualification.GET("/:id/", h.getQualificationByID)
		qualification.PUT("/:id/", h.updateQualification)
		qualification.PATCH("/:id/", h.updateQualification)
		qualification.DELETE("/:id/", h.deleteQualification)
	}

	specialization := router.Group("/specialization", h.authMiddleware())
	{
		specialization.POST("/", h.createSpecialization)
		specialization.GET("/", h.getSpecializations)
		specialization.GET("/:id/", h.getSpecializationByID)
		specialization.PUT("/:id/", h.updateSpecialization)
		specialization.PATCH("/:id/", h.updateSpecialization)
		specialization.DELETE("/:id/", h.deleteSpecialization)
	}

	requests := router.Group("/requests", h.authMiddleware())
	{
		requests.POST("/", h.createCareRequest)
		requests.GET("/", h.getCareRequests)
		requests.GET("/:id/", h.getCareRequestByID)
		requests.POST("/:id/accept/", h.acceptCareRequest)
		requests.POST("/:id/decline/", h.declineCareRequest)
	}

	ratings := router.Group("/ratings", h.authMiddleware())
	{
		ratings.POST("/", h.createRating)
		ratings.GET("/", h.getMyRatings)
		ratings.POST("/allow/", h.canRate)
		ratings.GET("/:id/", h.getRatingByID)
	}
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			h.logger.Warn("проверка зависимости не прошла", zap.String("name", check.Name), zap.Error(err))
			checks[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[check.Name] = "ok"
	}

	if status != http.StatusOK {
		detailedErrorResponse(c, status, "сервис недоступен", checks)
		return
	}

	successResponse(c, http.StatusOK, gin.H{
		"name":    h.config.Name,
		"version": h.config.Version,
		"checks":  checks,
	})
}
