package mirror

import (
	"github.com/google/uuid"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"twocare/internal/domain"
)

// Document - денормализованная запись сиделки в поисковом индексе.
type Document struct {
	ID                string   `json:"id"`
	FullName          string   `json:"full_name"`
	Description       string   `json:"description"`
	DayPrice          float64  `json:"day_price"`
	HourPrice         float64  `json:"hour_price"`
	PhotoURL          string   `json:"photo_url"`
	Specializations   []string `json:"specializations"`
	SpecializationIDs []string `json:"specialization_ids"`
	Qualifications    []string `json:"qualifications"`
	Rating            float64  `json:"rating"`
	RatingCount       int      `json:"rating_count"`
	UpdatedAt         int64    `json:"updated_at"`
}

func NewDocument(c *domain.Caregiver) Document {
	doc := Document{
		ID:                c.ID.String(),
		FullName:          domain.User{FirstName: c.FirstName, LastName: c.LastName}.FullName(),
		Description:       c.Description,
		DayPrice:          c.DayPrice,
		HourPrice:         c.HourPrice,
		PhotoURL:          c.PhotoURL,
		Specializations:   make([]string, 0, len(c.Specializations)),
		SpecializationIDs: make([]string, 0, len(c.Specializations)),
		Qualifications:    make([]string, 0, len(c.Qualifications)),
		Rating:            c.Rating.Average,
		RatingCount:       c.Rating.Count,
		UpdatedAt:         c.UpdatedAt.Unix(),
	}

	for _, s := range c.Specializations {
		doc.Specializations = append(doc.Specializations, s.Name)
		doc.SpecializationIDs = append(doc.SpecializationIDs, s.ID.String())
	}
	for _, q := range c.Qualifications {
		doc.Qualifications = append(doc.Qualifications, q.Name)
	}

	return doc
}

func (d Document) ListItem() domain.CaregiverListItem {
	item := domain.CaregiverListItem{
		FullName:        d.FullName,
		Description:     d.Description,
		DayPrice:        d.DayPrice,
		HourPrice:       d.HourPrice,
		PhotoURL:        d.PhotoURL,
		Specializations: d.Specializations,
		Qualifications:  d.Qualifications,
		Rating:          d.Rating,
		RatingCount:     d.RatingCount,
	}
	if id, err := uuid.Parse(d.ID); err == nil {
		item.ID = id
	}
	if item.Specializations == nil {
		item.Specializations = []string{}
	}
	if item.Qualifications == nil {
		item.Qualifications = []string{}
	}
	return item
}

func collectionSchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "full_name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "day_price", Type: "float", Facet: pointer.True()},
			{Name: "hour_price", Type: "float", Facet: pointer.True()},
			{Name: "photo_url", Type: "string", Optional: pointer.True()},
			{Name: "specializations", Type: "string[]", Facet: pointer.True()},
			{Name: "specialization_ids", Type: "string[]"},
			{Name: "qualifications", Type: "string[]"},
			{Name: "rating", Type: "float"},
			{Name: "rating_count", Type: "int32"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("updated_at"),
	}
}
