package domain

import (
	"time"

	"github.com/google/uuid"
)

type Caregiver struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Description     string           `json:"description"`
	DayPrice        float64          `json:"day_price"`
	HourPrice       float64          `json:"hour_price"`
	PhotoURL        string           `json:"photo_url"`
	Qualifications  []Qualification  `json:"qualifications"`
	Specializations []Specialization `json:"specializations"`
	Calendar
	Rating    RatingSummary `json:"rating"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Calendar - периоды, когда сиделка недоступна.
type Calendar struct {
	FixedUnavailableDays  []int    `json:"fixed_unavailable_days"`
	FixedUnavailableHours []string `json:"fixed_unavailable_hours"`
	CustomUnavailableDays []string `json:"custom_unavailable_days"`
}

// Normalize заменяет nil срезы пустыми, чтобы в JSON всегда были массивы.
func (c Calendar) Normalize() Calendar {
	if c.FixedUnavailableDays == nil {
		c.FixedUnavailableDays = []int{}
	}
	if c.FixedUnavailableHours == nil {
		c.FixedUnavailableHours = []string{}
	}
	if c.CustomUnavailableDays == nil {
		c.CustomUnavailableDays = []string{}
	}
	return c
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type UpsertMode int

const (
	// UpsertCreate - POST: создает профиль или полностью заменяет существующий.
	UpsertCreate UpsertMode = iota
	// UpsertReplace - PUT: полная замена существующего профиля.
	UpsertReplace
	// UpsertMerge - PATCH: меняются только переданные поля.
	UpsertMerge
)

type UpsertCaregiverDTO struct {
	Description           *string      `json:"description" binding:"omitempty,max=5000"`
	DayPrice              *float64     `json:"day_price" binding:"omitempty,gte=0"`
	HourPrice             *float64     `json:"hour_price" binding:"omitempty,gte=0"`
	Qualifications        *[]uuid.UUID `json:"qualifications"`
	Specializations       *[]uuid.UUID `json:"specializations"`
	FixedUnavailableDays  *[]int       `json:"fixed_unavailable_days"`
	FixedUnavailableHours *[]string    `json:"fixed_unavailable_hours"`
	CustomUnavailableDays *[]string    `json:"custom_unavailable_days"`
}

// CaregiverRecord - строка профиля в том виде, в котором она пишется в БД.
type CaregiverRecord struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Description       string
	DayPrice          float64
	HourPrice         float64
	PhotoURL          string
	QualificationIDs  []uuid.UUID
	SpecializationIDs []uuid.UUID
	Calendar          Calendar
}

// Apply накладывает DTO на запись. В режиме слияния отсутствующие поля
// сохраняют прежние значения, иначе сбрасываются.
func (r CaregiverRecord) Apply(dto UpsertCaregiverDTO, mode UpsertMode) CaregiverRecord {
	if mode != UpsertMerge {
		r = CaregiverRecord{ID: r.ID, UserID: r.UserID, PhotoURL: r.PhotoURL}
	}

	if dto.Description != nil {
		r.Description = *dto.Description
	}
	if dto.DayPrice != nil {
		r.DayPrice = *dto.DayPrice
	}
	if dto.HourPrice != nil {
		r.HourPrice = *dto.HourPrice
	}
	if dto.Qualifications != nil {
		r.QualificationIDs = uniqueIDs(*dto.Qualifications)
	}
	if dto.Specializations != nil {
		r.SpecializationIDs = uniqueIDs(*dto.Specializations)
	}
	if dto.FixedUnavailableDays != nil {
		r.Calendar.FixedUnavailableDays = *dto.FixedUnavailableDays
	}
	if dto.FixedUnavailableHours != nil {
		r.Calendar.FixedUnavailableHours = *dto.FixedUnavailableHours
	}
	if dto.CustomUnavailableDays != nil {
		r.Calendar.CustomUnavailableDays = *dto.CustomUnavailableDays
	}

	r.Calendar = r.Calendar.Normalize()

	return r
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CaregiverSearch - фильтр выдачи сиделок из поискового индекса.
type CaregiverSearch struct {
	Query           string   `form:"q"`
	Specializations []string `form:"specialization"`
	MaxDayPrice     *float64 `form:"max_day_price" binding:"omitempty,gte=0"`
	MaxHourPrice    *float64 `form:"max_hour_price" binding:"omitempty,gte=0"`
	MinRating       *float64 `form:"min_rating" binding:"omitempty,gte=0,lte=5"`
	Limit           int      `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset          int      `form:"offset" binding:"omitempty,min=0"`
}

type CaregiverListItem struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	DayPrice        float64   `json:"day_price"`
	HourPrice       float64   `json:"hour_price"`
	PhotoURL        string    `json:"photo_url"`
	Specializations []string  `json:"specializations"`
	Qualifications  []string  `json:"qualifications"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"rating_count"`
}
