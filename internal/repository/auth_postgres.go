package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
)

type AuthRepo struct {
	db *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepo {
	return &AuthRepo{
		db: db,
	}
}

func (r *AuthRepo) CreateSession(ctx context.Context, session domain.Session) error {
	ds := psql.Insert("sessions").Prepared(true).Rows(goqu.Record{
		"id":            session.ID,
		"user_id":       session.UserID,
		"refresh_token": session.RefreshToken,
		"user_agent":    session.UserAgent,
		"ip":            session.IP,
		"expires_at":    session.ExpiresAt,
		"created_at":    session.CreatedAt,
	})

	_, err := execDS(ctx, r.db, ds)
	return translate(err, "", "ошибка создания сессии")
}

func (r *AuthRepo) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	ds := psql.From("sessions").Prepared(true).
		Select("id", "user_id", "refresh_token", "user_agent", "ip", "expires_at", "created_at").
		Where(goqu.Ex{"refresh_token": refreshToken})

	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}

	var session domain.Session
	err = row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.UserAgent,
		&session.IP,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "сессия не найдена", "ошибка получения сессии")
	}

	return &session, nil
}

func (r *AuthRepo) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := execDS(ctx, r.db, psql.Delete("sessions").Prepared(true).Where(goqu.Ex{"id": id}))
	return translate(err, "", "ошибка удаления сессии")
}

func (r *AuthRepo) DeleteExpiredSessions(ctx context.Context, userID uuid.UUID) error {
	ds := psql.Delete("sessions").Prepared(true).Where(
		goqu.Ex{"user_id": userID},
		goqu.C("expires_at").Lt(goqu.L("NOW()")),
	)
	_, err := execDS(ctx, r.db, ds)
	return translate(err, "", "ошибка удаления истекших сессий")
}
