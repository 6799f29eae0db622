package domain

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusDone    OutboxStatus = "done"
	OutboxStatusDead    OutboxStatus = "dead"
)

// OutboxEntry - задание на синхронизацию профиля сиделки с поисковым индексом.
type OutboxEntry struct {
	ID          int64
	CaregiverID uuid.UUID
	IsUpdate    bool
	Status      OutboxStatus
	Attempts    int
	MaxAttempts int
	NextTryAt   time.Time
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
