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
	apperrors "twocare/pkg/errors"
)

const (
	ratingNotFound      = "оценка не найдена"
	noQualifyingRequest = "нет принятой заявки без оценки"
)

type RatingRepo struct {
	db     *pgxpool.Pool
	outbox *OutboxRepo
}

func NewRatingRepository(db *pgxpool.Pool, outbox *OutboxRepo) *RatingRepo {
	return &RatingRepo{
		db:     db,
		outbox: outbox,
	}
}

func pairDataset(caregiverID, carereceiverID uuid.UUID) *goqu.SelectDataset {
	return psql.From(goqu.T("care_requests").As("req")).Prepared(true).
		Where(goqu.Ex{
			"req.caregiver_id":    caregiverID,
			"req.carereceiver_id": carereceiverID,
			"req.status":          int(domain.CareRequestStatusAccepted),
		})
}

func eligibilityDataset(caregiverID, carereceiverID uuid.UUID) *goqu.SelectDataset {
	return pairDataset(caregiverID, carereceiverID).
		LeftJoin(goqu.T("ratings").As("r"), goqu.On(goqu.I("r.care_request_id").Eq(goqu.I("req.id")))).
		Select(goqu.COUNT("req.id"), goqu.COUNT("r.id"))
}

// oldestUnratedDataset выбирает с блокировкой самую раннюю по дате принятую
// заявку пары, к которой еще нет оценки.
func oldestUnratedDataset(caregiverID, carereceiverID uuid.UUID) *goqu.SelectDataset {
	rated := psql.From(goqu.T("ratings").As("r")).
		Select(goqu.L("1")).
		Where(goqu.I("r.care_request_id").Eq(goqu.I("req.id")))

	return pairDataset(caregiverID, carereceiverID).
		Select("req.id").
		Where(goqu.L("NOT EXISTS ?", rated)).
		Order(goqu.I("req.date").Asc(), goqu.I("req.created_at").Asc()).
		Limit(1).
		ForUpdate(exp.Wait)
}

func (r *RatingRepo) CountEligibility(ctx context.Context, caregiverID, carereceiverID uuid.UUID) (int, int, error) {
	row, err := queryRowDS(ctx, r.db, eligibilityDataset(caregiverID, carereceiverID))
	if err != nil {
		return 0, 0, err
	}

	var accepted, rated int
	if err := row.Scan(&accepted, &rated); err != nil {
		return 0, 0, translate(err, "", "ошибка подсчета принятых заявок")
	}
	return accepted, rated, nil
}

// CreateForOldestUnrated привязывает оценку к самой ранней принятой заявке пары без оценки
// и ставит профиль сиделки в очередь индексации.
func (r *RatingRepo) CreateForOldestUnrated(ctx context.Context, caregiverID, carereceiverID uuid.UUID, score int, comment string) (*domain.Rating, error) {
	rating, err := r.createForOldestUnrated(ctx, caregiverID, carereceiverID, score, comment)
	// заявку успели оценить в параллельной транзакции, у пары может быть другая
	if isUniqueViolation(err) {
		rating, err = r.createForOldestUnrated(ctx, caregiverID, carereceiverID, score, comment)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewNotFoundError(noQualifyingRequest)
		}
		return nil, translate(err, "", "ошибка создания оценки")
	}

	return rating, nil
}

func (r *RatingRepo) createForOldestUnrated(ctx context.Context, caregiverID, carereceiverID uuid.UUID, score int, comment string) (*domain.Rating, error) {
	var rating domain.Rating

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row, err := queryRowDS(ctx, tx, oldestUnratedDataset(caregiverID, carereceiverID))
		if err != nil {
			return err
		}

		var requestID uuid.UUID
		if err := row.Scan(&requestID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundError(noQualifyingRequest)
			}
			return err
		}

		rating = domain.Rating{
			ID:            uuid.New(),
			CareRequestID: requestID,
			Score:         score,
			Comment:       comment,
			CreatedAt:     time.Now(),
		}

		_, err = execDS(ctx, tx, psql.Insert("ratings").Prepared(true).Rows(goqu.Record{
			"id":              rating.ID,
			"care_request_id": rating.CareRequestID,
			"score":           rating.Score,
			"comment":         rating.Comment,
			"created_at":      rating.CreatedAt,
		}))
		if err != nil {
			return err
		}

		return r.outbox.enqueue(ctx, tx, caregiverID, true)
	})
	if err != nil {
		return nil, err
	}

	return &rating, nil
}

func (r *RatingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	ds := psql.From("ratings").Prepared(true).
		Select("id", "care_request_id", "score", "comment", "created_at").
		Where(goqu.Ex{"id": id})

	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}

	var rating domain.Rating
	if err := row.Scan(&rating.ID, &rating.CareRequestID, &rating.Score, &rating.Comment, &rating.CreatedAt); err != nil {
		return nil, translate(err, ratingNotFound, "ошибка получения оценки")
	}
	return &rating, nil
}

func (r *RatingRepo) ListByCaregiver(ctx context.Context, filter domain.RatingFilter) ([]domain.Rating, int, error) {
	base := psql.From(goqu.T("ratings").As("r")).Prepared(true).
		Join(goqu.T("care_requests").As("req"), goqu.On(goqu.I("req.id").Eq(goqu.I("r.care_request_id")))).
		Where(goqu.Ex{"req.caregiver_id": filter.CaregiverID})

	row, err := queryRowDS(ctx, r.db, base.Select(goqu.COUNT("*")))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, translate(err, "", "ошибка подсчета оценок")
	}

	ds := base.Select("r.id", "r.care_request_id", "r.score", "r.comment", "r.created_at").
		Order(goqu.I("r.created_at").Desc()).
		Limit(pageLimit(filter.Limit)).
		Offset(pageOffset(filter.Offset))

	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, 0, translate(err, "", "ошибка получения списка оценок")
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(&rating.ID, &rating.CareRequestID, &rating.Score, &rating.Comment, &rating.CreatedAt); err != nil {
			return nil, 0, translate(err, "", "ошибка сканирования оценки")
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "", "ошибка обработки результатов запроса")
	}

	return ratings, total, nil
}
