package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
)

// referenceRow - общая строка справочников qualifications и specializations.
type referenceRow struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type referenceTable struct {
	db       *pgxpool.Pool
	table    string
	notFound string
}

func (t referenceTable) create(ctx context.Context, dto domain.CreateReferenceDTO) (referenceRow, error) {
	now := time.Now()
	row := referenceRow{ID: uuid.New(), Name: dto.Name, Description: dto.Description, CreatedAt: now, UpdatedAt: now}

	ds := psql.Insert(t.table).Prepared(true).Rows(goqu.Record{
		"id":          row.ID,
		"name":        row.Name,
		"description": row.Description,
		"created_at":  row.CreatedAt,
		"updated_at":  row.UpdatedAt,
	})

	_, err := execDS(ctx, t.db, ds)
	if err != nil {
		return referenceRow{}, translate(err, "", "ошибка создания записи справочника")
	}

	return row, nil
}

func (t referenceTable) getByID(ctx context.Context, id uuid.UUID) (referenceRow, error) {
	ds := psql.From(t.table).Prepared(true).
		Select("id", "name", "description", "created_at", "updated_at").
		Where(goqu.Ex{"id": id})

	row, err := queryRowDS(ctx, t.db, ds)
	if err != nil {
		return referenceRow{}, err
	}

	var ref referenceRow
	if err := row.Scan(&ref.ID, &ref.Name, &ref.Description, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
		return referenceRow{}, translate(err, t.notFound, "ошибка получения записи справочника")
	}

	return ref, nil
}

func (t referenceTable) update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (referenceRow, error) {
	record := goqu.Record{"updated_at": time.Now()}
	if dto.Name != nil {
		record["name"] = *dto.Name
	}
	if dto.Description != nil {
		record["description"] = *dto.Description
	}

	tag, err := execDS(ctx, t.db, psql.Update(t.table).Prepared(true).Set(record).Where(goqu.Ex{"id": id}))
	if err != nil {
		return referenceRow{}, translate(err, "", "ошибка обновления записи справочника")
	}
	if tag.RowsAffected() == 0 {
		return referenceRow{}, translate(errNoRows, t.notFound, "")
	}

	return t.getByID(ctx, id)
}

func (t referenceTable) delete(ctx context.Context, id uuid.UUID) error {
	tag, err := execDS(ctx, t.db, psql.Delete(t.table).Prepared(true).Where(goqu.Ex{"id": id}))
	if err != nil {
		return translate(err, "", "ошибка удаления записи справочника")
	}
	if tag.RowsAffected() == 0 {
		return translate(errNoRows, t.notFound, "")
	}
	return nil
}

func (t referenceTable) listDataset(filter domain.ReferenceFilter) *goqu.SelectDataset {
	ds := psql.From(t.table).Prepared(true)
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		term := "%" + *filter.SearchTerm + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(term),
			goqu.C("description").ILike(term),
		))
	}
	return ds
}

func (t referenceTable) list(ctx context.Context, filter domain.ReferenceFilter) ([]referenceRow, int, error) {
	base := t.listDataset(filter)

	var total int
	row, err := queryRowDS(ctx, t.db, base.Select(goqu.COUNT("*")))
	if err != nil {
		return nil, 0, err
	}
	if err := row.Scan(&total); err != nil {
		return nil, 0, translate(err, "", "ошибка подсчета записей справочника")
	}

	ds := base.Select("id", "name", "description", "created_at", "updated_at").
		Order(goqu.C("name").Asc()).
		Limit(pageLimit(filter.Limit)).
		Offset(pageOffset(filter.Offset))

	rows, err := queryDS(ctx, t.db, ds)
	if err != nil {
		return nil, 0, translate(err, "", "ошибка получения списка справочника")
	}
	defer rows.Close()

	items := make([]referenceRow, 0)
	for rows.Next() {
		var ref referenceRow
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Description, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, 0, translate(err, "", "ошибка сканирования записи справочника")
		}
		items = append(items, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "", "ошибка обработки результатов запроса")
	}

	return items, total, nil
}

// missing возвращает идентификаторы из ids, которых нет в справочнике.
func (t referenceTable) missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := queryDS(ctx, t.db, psql.From(t.table).Prepared(true).Select("id").Where(goqu.Ex{"id": ids}))
	if err != nil {
		return nil, translate(err, "", "ошибка проверки записей справочника")
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "", "ошибка сканирования записи справочника")
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "", "ошибка обработки результатов запроса")
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type QualificationRepo struct {
	referenceTable
}

func NewQualificationRepository(db *pgxpool.Pool) *QualificationRepo {
	return &QualificationRepo{referenceTable{db: db, table: "qualifications", notFound: "квалификация не найдена"}}
}

func (r *QualificationRepo) Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Qualification, error) {
	row, err := r.create(ctx, dto)
	if err != nil {
		return nil, err
	}
	q := domain.Qualification(row)
	return &q, nil
}

func (r *QualificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Qualification, error) {
	row, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q := domain.Qualification(row)
	return &q, nil
}

func (r *QualificationRepo) Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Qualification, error) {
	row, err := r.update(ctx, id, dto)
	if err != nil {
		return nil, err
	}
	q := domain.Qualification(row)
	return &q, nil
}

func (r *QualificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, id)
}

func (r *QualificationRepo) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Qualification, int, error) {
	rows, total, err := r.list(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]domain.Qualification, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.Qualification(row))
	}
	return items, total, nil
}

func (r *QualificationRepo) Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return r.missing(ctx, ids)
}

type SpecializationRepo struct {
	referenceTable
}

func NewSpecializationRepository(db *pgxpool.Pool) *SpecializationRepo {
	return &SpecializationRepo{referenceTable{db: db, table: "specializations", notFound: "специализация не найдена"}}
}

func (r *SpecializationRepo) Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Specialization, error) {
	row, err := r.create(ctx, dto)
	if err != nil {
		return nil, err
	}
	s := domain.Specialization(row)
	return &s, nil
}

func (r *SpecializationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Specialization, error) {
	row, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s := domain.Specialization(row)
	return &s, nil
}

func (r *SpecializationRepo) Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Specialization, error) {
	row, err := r.update(ctx, id, dto)
	if err != nil {
		return nil, err
	}
	s := domain.Specialization(row)
	return &s, nil
}

func (r *SpecializationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, id)
}

func (r *SpecializationRepo) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Specialization, int, error) {
	rows, total, err := r.list(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]domain.Specialization, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.Specialization(row))
	}
	return items, total, nil
}

func (r *SpecializationRepo) Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return r.missing(ctx, ids)
}
