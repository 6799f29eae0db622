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

const carereceiverNotFound = "профиль получателя ухода не найден"

type CarereceiverUpsertFunc func(existing *domain.CarereceiverRecord) (domain.CarereceiverRecord, error)

type CarereceiverRepo struct {
	db *pgxpool.Pool
}

func NewCarereceiverRepository(db *pgxpool.Pool) *CarereceiverRepo {
	return &CarereceiverRepo{
		db: db,
	}
}

func (r *CarereceiverRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Carereceiver, error) {
	return r.getOne(ctx, goqu.Ex{"cr.id": id})
}

func (r *CarereceiverRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Carereceiver, error) {
	return r.getOne(ctx, goqu.Ex{"cr.user_id": userID})
}

func (r *CarereceiverRepo) getOne(ctx context.Context, where goqu.Ex) (*domain.Carereceiver, error) {
	ds := psql.From(goqu.T("carereceivers").As("cr")).Prepared(true).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("cr.user_id")))).
		Select("cr.id", "cr.user_id", "u.first_name", "u.last_name", "cr.description", "cr.address", "cr.created_at", "cr.updated_at").
		Where(where)

	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}

	var c domain.Carereceiver
	err = row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Description, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err, carereceiverNotFound, "ошибка получения профиля получателя ухода")
	}

	return &c, nil
}

func (r *CarereceiverRepo) Upsert(ctx context.Context, userID uuid.UUID, fn CarereceiverUpsertFunc) (*domain.CarereceiverRecord, bool, error) {
	var (
		saved   domain.CarereceiverRecord
		created bool
	)

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		ds := psql.From("carereceivers").Prepared(true).
			Select("id", "user_id", "description", "address").
			Where(goqu.Ex{"user_id": userID}).
			ForUpdate(exp.Wait)

		row, err := queryRowDS(ctx, tx, ds)
		if err != nil {
			return err
		}

		var (
			current  domain.CarereceiverRecord
			existing *domain.CarereceiverRecord
		)
		switch err := row.Scan(&current.ID, &current.UserID, &current.Description, &current.Address); {
		case err == nil:
			existing = &current
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		rec, err := fn(existing)
		if err != nil {
			return err
		}
		rec.UserID = userID

		now := time.Now()
		if existing == nil {
			rec.ID = uuid.New()
			created = true
			_, err = execDS(ctx, tx, psql.Insert("carereceivers").Prepared(true).Rows(goqu.Record{
				"id":          rec.ID,
				"user_id":     rec.UserID,
				"description": rec.Description,
				"address":     rec.Address,
				"created_at":  now,
				"updated_at":  now,
			}))
		} else {
			rec.ID = existing.ID
			_, err = execDS(ctx, tx, psql.Update("carereceivers").Prepared(true).Set(goqu.Record{
				"description": rec.Description,
				"address":     rec.Address,
				"updated_at":  now,
			}).Where(goqu.Ex{"id": rec.ID}))
		}
		if err != nil {
			return err
		}

		saved = rec
		return nil
	})
	if err != nil {
		return nil, false, translate(err, "", "ошибка сохранения профиля получателя ухода")
	}

	return &saved, created, nil
}
