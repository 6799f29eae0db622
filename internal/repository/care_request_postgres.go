package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
)

const careRequestNotFound = "заявка не найдена"

type CareRequestRepo struct {
	db *pgxpool.Pool
}

func NewCareRequestRepository(db *pgxpool.Pool) *CareRequestRepo {
	return &CareRequestRepo{
		db: db,
	}
}

func (r *CareRequestRepo) Create(ctx context.Context, req domain.CareRequest) error {
	ds := psql.Insert("care_requests").Prepared(true).Rows(goqu.Record{
		"id":              req.ID,
		"caregiver_id":    req.CaregiverID,
		"carereceiver_id": req.CarereceiverID,
		"date":            req.Date,
		"message":         req.Message,
		"status":          int(req.Status),
		"created_at":      req.CreatedAt,
		"updated_at":      req.UpdatedAt,
	})

	_, err := execDS(ctx, r.db, ds)
	return translate(err, "", "ошибка создания заявки")
}

func careRequestDataset() *goqu.SelectDataset {
	return psql.From(goqu.T("care_requests").As("req")).Prepared(true).
		Join(goqu.T("caregivers").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("req.caregiver_id")))).
		Join(goqu.T("carereceivers").As("rc"), goqu.On(goqu.I("rc.id").Eq(goqu.I("req.carereceiver_id"))))
}

var careRequestColumns = []interface{}{
	"req.id", "req.caregiver_id", "req.carereceiver_id", "req.date", "req.message", "req.status",
	"req.created_at", "req.updated_at", goqu.I("g.user_id"), goqu.I("rc.user_id"),
}

func scanCareRequest(row pgx.Row) (domain.CareRequest, error) {
	var req domain.CareRequest
	err := row.Scan(
		&req.ID,
		&req.CaregiverID,
		&req.CarereceiverID,
		&req.Date,
		&req.Message,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.CaregiverUserID,
		&req.CarereceiverUserID,
	)
	return req, err
}

func (r *CareRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CareRequest, error) {
	row, err := queryRowDS(ctx, r.db, careRequestDataset().Select(careRequestColumns...).Where(goqu.Ex{"req.id": id}))
	if err != nil {
		return nil, err
	}

	req, err := scanCareRequest(row)
	if err != nil {
		return nil, translate(err, careRequestNotFound, "ошибка получения заявки")
	}

	return &req, nil
}

// UpdateStatus записывает статус без проверки текущего состояния.
func (r *CareRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CareRequestStatus) error {
	ds := psql.Update("care_requests").Prepared(true).
		Set(goqu.Record{"status": int(status), "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"id": id})

	tag, err := execDS(ctx, r.db, ds)
	if err != nil {
		return translate(err, "", "ошибка обновления статуса заявки")
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, careRequestNotFound, "")
	}
	return nil
}

// listDataset отбирает заявки, где пользователь выступает любой из сторон.
// Пустой фильтр по сторонам возвращает все заявки.
func (r *CareRequestRepo) listDataset(filter domain.CareRequestFilter) *goqu.SelectDataset {
	ds := careRequestDataset()

	parties := make([]goqu.Expression, 0, 2)
	if filter.CaregiverID != nil {
		parties = append(parties, goqu.Ex{"req.caregiver_id": *filter.CaregiverID})
	}
	if filter.CarereceiverID != nil {
		parties = append(parties, goqu.Ex{"req.carereceiver_id": *filter.CarereceiverID})
	}
	if len(parties) > 0 {
		ds = ds.Where(goqu.Or(parties...))
	}

	if filter.Status != nil {
		ds = ds.Where(goqu.Ex{"req.status": int(*filter.Status)})
	}

	return ds
}

func (r *CareRequestRepo) List(ctx context.Context, filter domain.CareRequestFilter) ([]domain.CareRequest, int, error) {
	base := r.listDataset(filter)

	row, err := queryRowDS(ctx, r.db, base.Select(goqu.COUNT("*")))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, translate(err, "", "ошибка подсчета заявок")
	}

	ds := base.Select(careRequestColumns...).
		Order(goqu.I("req.created_at").Desc()).
		Limit(pageLimit(filter.Limit)).
		Offset(pageOffset(filter.Offset))

	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, 0, translate(err, "", "ошибка получения списка заявок")
	}
	defer rows.Close()

	requests := make([]domain.CareRequest, 0)
	for rows.Next() {
		req, err := scanCareRequest(rows)
		if err != nil {
			return nil, 0, translate(err, "", "ошибка сканирования заявки")
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "", "ошибка обработки результатов запроса")
	}

	return requests, total, nil
}
