package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
	"twocare/pkg/database"
)

const caregiverNotFound = "профиль сиделки не найден"

// CaregiverUpsertFunc получает текущую запись (nil, если профиля нет) и
// возвращает запись, которую нужно сохранить.
type CaregiverUpsertFunc func(existing *domain.CaregiverRecord) (domain.CaregiverRecord, error)

type CaregiverRepo struct {
	db     *pgxpool.Pool
	outbox *OutboxRepo
}

func NewCaregiverRepository(db *pgxpool.Pool, outbox *OutboxRepo) *CaregiverRepo {
	return &CaregiverRepo{
		db:     db,
		outbox: outbox,
	}
}

func caregiverDataset() *goqu.SelectDataset {
	ratings := psql.From(goqu.T("ratings").As("r")).
		Join(goqu.T("care_requests").As("cr"), goqu.On(goqu.I("cr.id").Eq(goqu.I("r.care_request_id")))).
		Where(goqu.I("cr.caregiver_id").Eq(goqu.I("c.id")))

	return psql.From(goqu.T("caregivers").As("c")).Prepared(true).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.user_id")))).
		Select(
			"c.id", "c.user_id", "u.first_name", "u.last_name",
			"c.description", "c.day_price", "c.hour_price", "c.photo_url",
			"c.fixed_unavailable_days", "c.fixed_unavailable_hours", "c.custom_unavailable_days",
			goqu.COALESCE(ratings.Select(goqu.L("AVG(r.score)::float8")), 0).As("rating_avg"),
			goqu.L("(?)", ratings.Select(goqu.COUNT("*"))).As("rating_count"),
			"c.created_at", "c.updated_at",
		)
}

func (r *CaregiverRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	return r.getOne(ctx, goqu.Ex{"c.id": id})
}

func (r *CaregiverRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Caregiver, error) {
	return r.getOne(ctx, goqu.Ex{"c.user_id": userID})
}

func (r *CaregiverRepo) getOne(ctx context.Context, where goqu.Ex) (*domain.Caregiver, error) {
	row, err := queryRowDS(ctx, r.db, caregiverDataset().Where(where))
	if err != nil {
		return nil, err
	}

	var (
		c                   domain.Caregiver
		days, hours, custom []byte
	)
	err = row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Description,
		&c.DayPrice,
		&c.HourPrice,
		&c.PhotoURL,
		&days,
		&hours,
		&custom,
		&c.Rating.Average,
		&c.Rating.Count,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, caregiverNotFound, "ошибка получения профиля сиделки")
	}

	if c.Calendar, err = decodeCalendar(days, hours, custom); err != nil {
		return nil, translate(err, "", "ошибка чтения календаря сиделки")
	}

	if c.Qualifications, err = r.qualifications(ctx, c.ID); err != nil {
		return nil, err
	}
	if c.Specializations, err = r.specializations(ctx, c.ID); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CaregiverRepo) qualifications(ctx context.Context, caregiverID uuid.UUID) ([]domain.Qualification, error) {
	ds := psql.From(goqu.T("qualifications").As("q")).Prepared(true).
		Join(goqu.T("caregiver_qualifications").As("cq"), goqu.On(goqu.I("cq.qualification_id").Eq(goqu.I("q.id")))).
		Select("q.id", "q.name", "q.description", "q.created_at", "q.updated_at").
		Where(goqu.Ex{"cq.caregiver_id": caregiverID}).
		Order(goqu.I("q.name").Asc())

	refs, err := r.scanReferences(ctx, ds)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Qualification, 0, len(refs))
	for _, ref := range refs {
		items = append(items, domain.Qualification(ref))
	}
	return items, nil
}

func (r *CaregiverRepo) specializations(ctx context.Context, caregiverID uuid.UUID) ([]domain.Specialization, error) {
	ds := psql.From(goqu.T("specializations").As("s")).Prepared(true).
		Join(goqu.T("caregiver_specializations").As("cs"), goqu.On(goqu.I("cs.specialization_id").Eq(goqu.I("s.id")))).
		Select("s.id", "s.name", "s.description", "s.created_at", "s.updated_at").
		Where(goqu.Ex{"cs.caregiver_id": caregiverID}).
		Order(goqu.I("s.name").Asc())

	refs, err := r.scanReferences(ctx, ds)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Specialization, 0, len(refs))
	for _, ref := range refs {
		items = append(items, domain.Specialization(ref))
	}
	return items, nil
}

func (r *CaregiverRepo) scanReferences(ctx context.Context, ds *goqu.SelectDataset) ([]referenceRow, error) {
	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, translate(err, "", "ошибка получения справочников сиделки")
	}
	defer rows.Close()

	refs := make([]referenceRow, 0)
	for rows.Next() {
		var ref referenceRow
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Description, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, translate(err, "", "ошибка сканирования справочника")
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "", "ошибка обработки результатов запроса")
	}
	return refs, nil
}

func (r *CaregiverRepo) GetCalendarByID(ctx context.Context, id uuid.UUID) (*domain.Calendar, error) {
	return r.calendar(ctx, goqu.Ex{"id": id})
}

func (r *CaregiverRepo) GetCalendarByUserID(ctx context.Context, userID uuid.UUID) (*domain.Calendar, error) {
	return r.calendar(ctx, goqu.Ex{"user_id": userID})
}

func (r *CaregiverRepo) calendar(ctx context.Context, where goqu.Ex) (*domain.Calendar, error) {
	ds := psql.From("caregivers").Prepared(true).
		Select("fixed_unavailable_days", "fixed_unavailable_hours", "custom_unavailable_days").
		Where(where)

	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}

	var days, hours, custom []byte
	if err := row.Scan(&days, &hours, &custom); err != nil {
		return nil, translate(err, caregiverNotFound, "ошибка получения календаря сиделки")
	}

	cal, err := decodeCalendar(days, hours, custom)
	if err != nil {
		return nil, translate(err, "", "ошибка чтения календаря сиделки")
	}
	return &cal, nil
}

// Upsert создает или обновляет профиль пользователя userID и в той же
// транзакции ставит задание синхронизации поискового индекса.
func (r *CaregiverRepo) Upsert(ctx context.Context, userID uuid.UUID, fn CaregiverUpsertFunc) (*domain.CaregiverRecord, bool, error) {
	var (
		saved   domain.CaregiverRecord
		created bool
	)

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		existing, err := r.lockRecord(ctx, tx, userID)
		if err != nil {
			return err
		}

		rec, err := fn(existing)
		if err != nil {
			return err
		}
		rec.UserID = userID

		if existing == nil {
			rec.ID = uuid.New()
			created = true
			err = r.insertRecord(ctx, tx, rec)
		} else {
			rec.ID = existing.ID
			err = r.updateRecord(ctx, tx, rec)
		}
		if err != nil {
			return err
		}

		if err := replaceLinks(ctx, tx, "caregiver_qualifications", "qualification_id", rec.ID, rec.QualificationIDs); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, "caregiver_specializations", "specialization_id", rec.ID, rec.SpecializationIDs); err != nil {
			return err
		}

		saved = rec
		return r.outbox.enqueue(ctx, tx, rec.ID, !created)
	})
	if err != nil {
		return nil, false, translate(err, "", "ошибка сохранения профиля сиделки")
	}

	return &saved, created, nil
}

func (r *CaregiverRepo) lockRecord(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.CaregiverRecord, error) {
	ds := psql.From("caregivers").Prepared(true).
		Select("id", "user_id", "description", "day_price", "hour_price", "photo_url",
			"fixed_unavailable_days", "fixed_unavailable_hours", "custom_unavailable_days").
		Where(goqu.Ex{"user_id": userID}).
		ForUpdate(exp.Wait)

	row, err := queryRowDS(ctx, tx, ds)
	if err != nil {
		return nil, err
	}

	var (
		rec                 domain.CaregiverRecord
		days, hours, custom []byte
	)
	err = row.Scan(&rec.ID, &rec.UserID, &rec.Description, &rec.DayPrice, &rec.HourPrice, &rec.PhotoURL, &days, &hours, &custom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка блокировки профиля сиделки: %w", err)
	}

	if rec.Calendar, err = decodeCalendar(days, hours, custom); err != nil {
		return nil, err
	}
	if rec.QualificationIDs, err = linkedIDs(ctx, tx, "caregiver_qualifications", "qualification_id", rec.ID); err != nil {
		return nil, err
	}
	if rec.SpecializationIDs, err = linkedIDs(ctx, tx, "caregiver_specializations", "specialization_id", rec.ID); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *CaregiverRepo) insertRecord(ctx context.Context, tx pgx.Tx, rec domain.CaregiverRecord) error {
	record, err := caregiverRecord(rec)
	if err != nil {
		return err
	}
	now := time.Now()
	record["id"] = rec.ID
	record["user_id"] = rec.UserID
	record["photo_url"] = rec.PhotoURL
	record["created_at"] = now
	record["updated_at"] = now

	_, err = execDS(ctx, tx, psql.Insert("caregivers").Prepared(true).Rows(record))
	return err
}

func (r *CaregiverRepo) updateRecord(ctx context.Context, tx pgx.Tx, rec domain.CaregiverRecord) error {
	record, err := caregiverRecord(rec)
	if err != nil {
		return err
	}
	record["updated_at"] = time.Now()

	_, err = execDS(ctx, tx, psql.Update("caregivers").Prepared(true).Set(record).Where(goqu.Ex{"id": rec.ID}))
	return err
}

func caregiverRecord(rec domain.CaregiverRecord) (goqu.Record, error) {
	cal := rec.Calendar.Normalize()

	days, err := json.Marshal(cal.FixedUnavailableDays)
	if err != nil {
		return nil, err
	}
	hours, err := json.Marshal(cal.FixedUnavailableHours)
	if err != nil {
		return nil, err
	}
	custom, err := json.Marshal(cal.CustomUnavailableDays)
	if err != nil {
		return nil, err
	}

	return goqu.Record{
		"description":             rec.Description,
		"day_price":               rec.DayPrice,
		"hour_price":              rec.HourPrice,
		"fixed_unavailable_days":  string(days),
		"fixed_unavailable_hours": string(hours),
		"custom_unavailable_days": string(custom),
	}, nil
}

// UpdatePhoto сохраняет ссылку на фото и ставит задание синхронизации.
func (r *CaregiverRepo) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		ds := psql.Update("caregivers").Prepared(true).
			Set(goqu.Record{"photo_url": photoURL, "updated_at": time.Now()}).
			Where(goqu.Ex{"id": id})

		tag, err := execDS(ctx, tx, ds)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return r.outbox.enqueue(ctx, tx, id, true)
	})
	return translate(err, caregiverNotFound, "ошибка обновления фото сиделки")
}

func linkedIDs(ctx context.Context, q querier, table, column string, caregiverID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := queryDS(ctx, q, psql.From(table).Prepared(true).Select(column).Where(goqu.Ex{"caregiver_id": caregiverID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func replaceLinks(ctx context.Context, q querier, table, column string, caregiverID uuid.UUID, ids []uuid.UUID) error {
	if _, err := execDS(ctx, q, psql.Delete(table).Prepared(true).Where(goqu.Ex{"caregiver_id": caregiverID})); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, goqu.Record{"caregiver_id": caregiverID, column: id})
	}

	_, err := execDS(ctx, q, psql.Insert(table).Prepared(true).Rows(rows...))
	return err
}

func decodeCalendar(days, hours, custom []byte) (domain.Calendar, error) {
	var cal domain.Calendar
	if len(days) > 0 {
		if err := json.Unmarshal(days, &cal.FixedUnavailableDays); err != nil {
			return cal, err
		}
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &cal.FixedUnavailableHours); err != nil {
			return cal, err
		}
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &cal.CustomUnavailableDays); err != nil {
			return cal, err
		}
	}
	return cal.Normalize(), nil
}
