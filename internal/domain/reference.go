package domain

import (
	"time"

	"github.com/google/uuid"
)

type Qualification struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Specialization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateReferenceDTO используется и для квалификаций, и для специализаций.
type CreateReferenceDTO struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateReferenceDTO struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type ReferenceFilter struct {
	SearchTerm *string `json:"search_term"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}
