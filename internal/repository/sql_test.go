package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twocare/internal/domain"
	apperrors "twocare/pkg/errors"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "x", "y"))

	err := translate(fmt.Errorf("scan: %w", pgx.ErrNoRows), "заявка не найдена", "ошибка")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "заявка не найдена")

	err = translate(&pgconn.PgError{Code: pgUniqueViolation}, "", "ошибка")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))

	err = translate(&pgconn.PgError{Code: pgForeignKeyViolation}, "", "ошибка")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	cause := fmt.Errorf("connection refused")
	err = translate(cause, "", "ошибка")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInternal))
	assert.ErrorIs(t, err, cause)

	forbidden := apperrors.NewForbiddenError("нет доступа")
	assert.Equal(t, forbidden, translate(forbidden, "", ""))
}

func TestPaging(t *testing.T) {
	assert.Equal(t, uint(20), pageLimit(0))
	assert.Equal(t, uint(100), pageLimit(1000))
	assert.Equal(t, uint(5), pageLimit(5))
	assert.Equal(t, uint(0), pageOffset(-3))
	assert.Equal(t, uint(10), pageOffset(10))
}

func TestOldestUnratedDataset(t *testing.T) {
	sql, args, err := oldestUnratedDataset(uuid.New(), uuid.New()).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "care_requests" AS "req"`)
	assert.Contains(t, sql, `NOT EXISTS (SELECT 1 FROM "ratings" AS "r"`)
	assert.Contains(t, sql, `ORDER BY "req"."date" ASC`)
	assert.Contains(t, sql, `FOR UPDATE`)
	assert.NotContains(t, sql, `SKIP LOCKED`)
	assert.NotEmpty(t, args)
}

func TestEligibilityDataset(t *testing.T) {
	sql, _, err := eligibilityDataset(uuid.New(), uuid.New()).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `LEFT JOIN "ratings" AS "r"`)
	assert.Contains(t, sql, `COUNT("req"."id")`)
	assert.Contains(t, sql, `COUNT("r"."id")`)
	assert.Contains(t, sql, `"req"."status" = `)
}

func TestClaimDataset(t *testing.T) {
	sql, _, err := claimDataset(time.Now()).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "mirror_outbox"`)
	assert.Contains(t, sql, `"next_try_at" <= `)
	assert.Contains(t, sql, `ORDER BY "id" ASC`)
	assert.Contains(t, sql, `FOR UPDATE SKIP LOCKED`)
}

func TestCareRequestListDataset(t *testing.T) {
	repo := &CareRequestRepo{}
	caregiverID, carereceiverID := uuid.New(), uuid.New()
	status := domain.CareRequestStatusAccepted

	sql, _, err := repo.listDataset(domain.CareRequestFilter{
		CaregiverID:    &caregiverID,
		CarereceiverID: &carereceiverID,
		Status:         &status,
	}).Select(careRequestColumns...).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `"req"."caregiver_id" = `)
	assert.Contains(t, sql, ` OR `)
	assert.Contains(t, sql, `"req"."carereceiver_id" = `)
	assert.Contains(t, sql, `"req"."status" = `)

	sql, _, err = repo.listDataset(domain.CareRequestFilter{}).Select(careRequestColumns...).ToSQL()
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
}

func TestReferenceListDataset(t *testing.T) {
	table := referenceTable{table: "qualifications"}
	term := "nurse"

	sql, args, err := table.listDataset(domain.ReferenceFilter{SearchTerm: &term}).Select("id").ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `"name" ILIKE `)
	assert.Contains(t, args, "%nurse%")

	sql, _, err = table.listDataset(domain.ReferenceFilter{}).Select("id").ToSQL()
	require.NoError(t, err)
	assert.NotContains(t, sql, "ILIKE")
}

func TestDecodeCalendar(t *testing.T) {
	cal, err := decodeCalendar([]byte(`[0,6]`), []byte(`["08:00"]`), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6}, cal.FixedUnavailableDays)
	assert.Equal(t, []string{"08:00"}, cal.FixedUnavailableHours)
	assert.Equal(t, []string{}, cal.CustomUnavailableDays)

	_, err = decodeCalendar([]byte(`{`), nil, nil)
	assert.Error(t, err)
}

func TestCaregiverRecord(t *testing.T) {
	record, err := caregiverRecord(domain.CaregiverRecord{Description: "опыт 5 лет", DayPrice: 100})
	require.NoError(t, err)

	assert.Equal(t, "опыт 5 лет", record["description"])
	assert.Equal(t, "[]", record["fixed_unavailable_days"])
	assert.Equal(t, "[]", record["custom_unavailable_days"])
}
