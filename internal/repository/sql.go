package repository

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "twocare/pkg/errors"
)

var psql = goqu.Dialect("postgres")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier - общее подмножество pgxpool.Pool и pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func build(ds sqlBuilder) (string, []interface{}, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError("ошибка построения запроса", err)
	}
	return query, args, nil
}

func execDS(ctx context.Context, q querier, ds sqlBuilder) (pgconn.CommandTag, error) {
	query, args, err := build(ds)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return q.Exec(ctx, query, args...)
}

func queryRowDS(ctx context.Context, q querier, ds sqlBuilder) (pgx.Row, error) {
	query, args, err := build(ds)
	if err != nil {
		return nil, err
	}
	return q.QueryRow(ctx, query, args...), nil
}

func queryDS(ctx context.Context, q querier, ds sqlBuilder) (pgx.Rows, error) {
	sqlText, args, err := build(ds)
	if err != nil {
		return nil, err
	}
	return q.Query(ctx, sqlText, args...)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// translate приводит ошибку драйвера к ошибке приложения.
func translate(err error, notFound, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFoundError(notFound)
	case isUniqueViolation(err):
		return apperrors.NewConflictError(message + ": запись уже существует")
	case isForeignKeyViolation(err):
		return apperrors.NewValidationError(message + ": ссылка на несуществующую запись")
	default:
		return apperrors.NewInternalError(message, err)
	}
}

func pageLimit(limit int) uint {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return uint(limit)
}

func pageOffset(offset int) uint {
	if offset < 0 {
		return 0
	}
	return uint(offset)
}

var errNoRows = pgx.ErrNoRows
