package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CareRequestStatus int

const (
	CareRequestStatusPending  CareRequestStatus = 0
	CareRequestStatusDeclined CareRequestStatus = 1
	CareRequestStatusAccepted CareRequestStatus = 2
)

func (s CareRequestStatus) String() string {
	switch s {
	case CareRequestStatusPending:
		return "pending"
	case CareRequestStatusDeclined:
		return "declined"
	case CareRequestStatusAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

func (s CareRequestStatus) Valid() bool {
	return s >= CareRequestStatusPending && s <= CareRequestStatusAccepted
}

// ParseCareRequestStatus принимает код статуса ("2") или его имя ("accepted").
func ParseCareRequestStatus(value string) (CareRequestStatus, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		s := CareRequestStatus(n)
		return s, s.Valid()
	}
	for _, s := range []CareRequestStatus{CareRequestStatusPending, CareRequestStatusDeclined, CareRequestStatusAccepted} {
		if strings.EqualFold(s.String(), value) {
			return s, true
		}
	}
	return 0, false
}

type CareRequest struct {
	ID             uuid.UUID         `json:"id"`
	CaregiverID    uuid.UUID         `json:"caregiver_id"`
	CarereceiverID uuid.UUID         `json:"carereceiver_id"`
	Date           time.Time         `json:"date"`
	Message        string            `json:"message"`
	Status         CareRequestStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// идентификаторы пользователей сторон, нужны для проверки доступа
	CaregiverUserID    uuid.UUID `json:"-"`
	CarereceiverUserID uuid.UUID `json:"-"`
}

// Accept переводит заявку в Accepted из любого состояния.
func (r *CareRequest) Accept() {
	r.Status = CareRequestStatusAccepted
}

// Decline переводит заявку в Declined из любого состояния.
func (r *CareRequest) Decline() {
	r.Status = CareRequestStatusDeclined
}

// IsParty сообщает, является ли пользователь одной из сторон заявки.
func (r CareRequest) IsParty(userID uuid.UUID) bool {
	return r.CaregiverUserID == userID || r.CarereceiverUserID == userID
}

type CreateCareRequestDTO struct {
	CaregiverID uuid.UUID `json:"caregiver_id" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Message     string    `json:"message" binding:"max=2000"`
}

type CareRequestFilter struct {
	CaregiverID    *uuid.UUID
	CarereceiverID *uuid.UUID
	Status         *CareRequestStatus
	Limit          int
	Offset         int
}
