package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
	apperrors "twocare/pkg/errors"
)

var userColumns = []interface{}{
	"id", "first_name", "last_name", "email", "phone", "password_hash", "role", "is_active", "created_at", "updated_at",
}

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) Create(ctx context.Context, dto domain.CreateUserDTO) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()

	ds := psql.Insert("users").Prepared(true).Rows(goqu.Record{
		"id":            id,
		"first_name":    dto.FirstName,
		"last_name":     dto.LastName,
		"email":         dto.Email,
		"phone":         dto.Phone,
		"password_hash": dto.PasswordHash,
		"role":          string(dto.Role),
		"is_active":     true,
		"created_at":    now,
		"updated_at":    now,
	})

	if _, err := execDS(ctx, r.db, ds); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, apperrors.NewConflictError("пользователь с таким email уже существует")
		}
		return uuid.Nil, translate(err, "", "ошибка создания пользователя")
	}

	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, goqu.Ex{"id": id}, "пользователь не найден")
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, goqu.Ex{"email": email}, "пользователь с таким email не найден")
}

func (r *UserRepo) getOne(ctx context.Context, where goqu.Ex, notFound string) (*domain.User, error) {
	ds := psql.From("users").Prepared(true).Select(userColumns...).Where(where)

	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, notFound, "ошибка получения пользователя")
	}

	return &user, nil
}
