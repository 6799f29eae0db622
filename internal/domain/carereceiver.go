package domain

import (
	"time"

	"github.com/google/uuid"
)

type Carereceiver struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpsertCarereceiverDTO struct {
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
}

type CarereceiverRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Description string
	Address     string
}

func (r CarereceiverRecord) Apply(dto UpsertCarereceiverDTO, mode UpsertMode) CarereceiverRecord {
	if mode != UpsertMerge {
		r = CarereceiverRecord{ID: r.ID, UserID: r.UserID}
	}
	if dto.Description != nil {
		r.Description = *dto.Description
	}
	if dto.Address != nil {
		r.Address = *dto.Address
	}
	return r
}
