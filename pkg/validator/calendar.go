package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/qri-io/jsonschema"
)

const calendarSchema = `{
	"type": "object",
	"properties": {
		"fixed_unavailable_days": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0, "maximum": 6},
			"uniqueItems": true
		},
		"fixed_unavailable_hours": {
			"type": "array",
			"items": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
			"uniqueItems": true
		},
		"custom_unavailable_days": {
			"type": "array",
			"items": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
			"uniqueItems": true
		}
	}
}`

var (
	calendarOnce sync.Once
	calendarRS   *jsonschema.Schema
	calendarErr  error
)

func calendarValidator() (*jsonschema.Schema, error) {
	calendarOnce.Do(func() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(calendarSchema), rs); err != nil {
			calendarErr = fmt.Errorf("ошибка разбора схемы календаря: %w", err)
			return
		}
		calendarRS = rs
	})
	return calendarRS, calendarErr
}

// ValidateCalendar проверяет JSON документ календаря и возвращает ошибки по полям.
// Пустая карта означает, что документ корректен.
func ValidateCalendar(ctx context.Context, doc []byte) (map[string]string, error) {
	rs, err := calendarValidator()
	if err != nil {
		return nil, err
	}

	keyErrs, err := rs.ValidateBytes(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки календаря: %w", err)
	}

	fields := make(map[string]string)
	for _, ke := range keyErrs {
		fields[propertyField(ke.PropertyPath)] = ke.Message
	}

	// шаблон не отсекает несуществующие даты вроде 2024-02-30
	var cal struct {
		CustomUnavailableDays []string `json:"custom_unavailable_days"`
	}
	if len(fields) == 0 && json.Unmarshal(doc, &cal) == nil {
		for i, day := range cal.CustomUnavailableDays {
			if _, err := time.Parse(time.DateOnly, day); err != nil {
				fields[fmt.Sprintf("custom_unavailable_days.%d", i)] = "несуществующая дата: " + day
			}
		}
	}

	return fields, nil
}

// propertyField превращает "/fixed_unavailable_days/3" в "fixed_unavailable_days.3".
func propertyField(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "calendar"
	}
	return strings.ReplaceAll(path, "/", ".")
}
