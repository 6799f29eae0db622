package domain

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID            uuid.UUID `json:"id"`
	CareRequestID uuid.UUID `json:"care_request_id"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// CaregiverID в запросах оценки - идентификатор пользователя сиделки, не профиля.
type CreateRatingDTO struct {
	CaregiverID *uuid.UUID `json:"caregiverId"`
	Score       int        `json:"score" binding:"required,min=1,max=5"`
	Comment     string     `json:"comment" binding:"max=2000"`
}

type CanRateRequest struct {
	CaregiverID *uuid.UUID `json:"caregiverId"`
}

type CanRateResponse struct {
	Allowed bool `json:"allowed"`
}

// CanRate: оценку можно оставить, пока принятых заявок больше, чем оцененных.
func CanRate(accepted, rated int) bool {
	return accepted > rated
}

type RatingFilter struct {
	CaregiverID uuid.UUID
	Limit       int
	Offset      int
}
