package repository

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
	"twocare/pkg/database"
)

// claimLease - на это время захваченное задание скрыто от других воркеров.
const claimLease = time.Minute

type OutboxRepo struct {
	db          *pgxpool.Pool
	maxAttempts int
}

func NewOutboxRepository(db *pgxpool.Pool, maxAttempts int) *OutboxRepo {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	return &OutboxRepo{
		db:          db,
		maxAttempts: maxAttempts,
	}
}

func (r *OutboxRepo) enqueue(ctx context.Context, q querier, caregiverID uuid.UUID, isUpdate bool) error {
	now := time.Now()
	ds := psql.Insert("mirror_outbox").Prepared(true).Rows(goqu.Record{
		"caregiver_id": caregiverID,
		"is_update":    isUpdate,
		"status":       string(domain.OutboxStatusPending),
		"attempts":     0,
		"max_attempts": r.maxAttempts,
		"next_try_at":  now,
		"created_at":   now,
		"updated_at":   now,
	})
	_, err := execDS(ctx, q, ds)
	return err
}

// EnqueueAll ставит в очередь полную синхронизацию всех профилей.
func (r *OutboxRepo) EnqueueAll(ctx context.Context) (int64, error) {
	ds := psql.Insert("mirror_outbox").Prepared(true).
		Cols("caregiver_id", "is_update", "status", "attempts", "max_attempts", "next_try_at", "created_at", "updated_at").
		FromQuery(psql.From("caregivers").Select(
			goqu.C("id"),
			goqu.L("TRUE"),
			goqu.L("?::varchar", string(domain.OutboxStatusPending)),
			goqu.L("0"),
			goqu.L("?::integer", r.maxAttempts),
			goqu.L("NOW()"),
			goqu.L("NOW()"),
			goqu.L("NOW()"),
		))

	tag, err := execDS(ctx, r.db, ds)
	if err != nil {
		return 0, translate(err, "", "ошибка постановки профилей в очередь синхронизации")
	}
	return tag.RowsAffected(), nil
}

func claimDataset(now time.Time) *goqu.SelectDataset {
	return psql.From("mirror_outbox").Prepared(true).
		Select("id", "caregiver_id", "is_update", "status", "attempts", "max_attempts", "next_try_at", "last_error", "created_at", "updated_at").
		Where(
			goqu.Ex{"status": string(domain.OutboxStatusPending)},
			goqu.C("next_try_at").Lte(now),
		).
		Order(goqu.C("id").Asc()).
		Limit(1).
		ForUpdate(exp.SkipLocked)
}

// FetchNext захватывает самое старое готовое задание. Возвращает nil, если заданий нет.
func (r *OutboxRepo) FetchNext(ctx context.Context) (*domain.OutboxEntry, error) {
	var entry *domain.OutboxEntry

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now()

		row, err := queryRowDS(ctx, tx, claimDataset(now))
		if err != nil {
			return err
		}

		var e domain.OutboxEntry
		err = row.Scan(&e.ID, &e.CaregiverID, &e.IsUpdate, &e.Status, &e.Attempts, &e.MaxAttempts, &e.NextTryAt, &e.LastError, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		lease := psql.Update("mirror_outbox").Prepared(true).
			Set(goqu.Record{"next_try_at": now.Add(claimLease), "updated_at": now}).
			Where(goqu.Ex{"id": e.ID})
		if _, err := execDS(ctx, tx, lease); err != nil {
			return err
		}

		entry = &e
		return nil
	})
	if err != nil {
		return nil, translate(err, "", "ошибка получения задания синхронизации")
	}

	return entry, nil
}

func (r *OutboxRepo) MarkDone(ctx context.Context, id int64) error {
	return r.setState(ctx, id, goqu.Record{"status": string(domain.OutboxStatusDone), "last_error": ""})
}

// Reschedule фиксирует неудачную попытку и переносит задание на nextTry.
func (r *OutboxRepo) Reschedule(ctx context.Context, id int64, attempts int, nextTry time.Time, lastError string) error {
	return r.setState(ctx, id, goqu.Record{
		"attempts":    attempts,
		"next_try_at": nextTry,
		"last_error":  lastError,
	})
}

func (r *OutboxRepo) MarkDead(ctx context.Context, id int64, attempts int, lastError string) error {
	return r.setState(ctx, id, goqu.Record{
		"status":     string(domain.OutboxStatusDead),
		"attempts":   attempts,
		"last_error": lastError,
	})
}

func (r *OutboxRepo) setState(ctx context.Context, id int64, record goqu.Record) error {
	record["updated_at"] = time.Now()
	_, err := execDS(ctx, r.db, psql.Update("mirror_outbox").Prepared(true).Set(record).Where(goqu.Ex{"id": id}))
	return translate(err, "", "ошибка обновления задания синхронизации")
}
