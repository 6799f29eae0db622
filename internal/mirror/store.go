package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/domain"
)

const defaultSearchLimit = 20

type Store interface {
	Upsert(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error)
}

// ErrDisabled возвращается, когда поисковый индекс не настроен.
var ErrDisabled = errors.New("поисковый индекс не настроен")

type TypesenseStore struct {
	client     *typesense.Client
	collection string
	logger     *zap.Logger
}

func NewTypesenseStore(cfg config.TypesenseConfig, logger *zap.Logger) *TypesenseStore {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(cfg.ConnectionTimeout),
	)

	return &TypesenseStore{
		client:     client,
		collection: cfg.Collection,
		logger:     logger,
	}
}

func (s *TypesenseStore) Ping(ctx context.Context) error {
	ok, err := s.client.Health(ctx, 2*time.Second)
	if err != nil {
		return fmt.Errorf("ошибка проверки Typesense: %w", err)
	}
	if !ok {
		return errors.New("Typesense недоступен")
	}
	return nil
}

// InitSchema создает коллекцию, если ее еще нет.
func (s *TypesenseStore) InitSchema(ctx context.Context) error {
	if _, err := s.client.Collection(s.collection).Retrieve(ctx); err == nil {
		return nil
	}

	if _, err := s.client.Collections().Create(ctx, collectionSchema(s.collection)); err != nil {
		return fmt.Errorf("ошибка создания коллекции %s: %w", s.collection, err)
	}

	s.logger.Info("создана коллекция поискового индекса", zap.String("collection", s.collection))
	return nil
}

func (s *TypesenseStore) Upsert(ctx context.Context, doc Document) error {
	if _, err := s.client.Collection(s.collection).Documents().Upsert(ctx, doc); err != nil {
		return fmt.Errorf("ошибка индексации сиделки %s: %w", doc.ID, err)
	}
	return nil
}

func (s *TypesenseStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.collection).Document(id).Delete(ctx)
	if err != nil {
		var httpErr *typesense.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("ошибка удаления сиделки %s из индекса: %w", id, err)
	}
	return nil
}

func (s *TypesenseStore) Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error) {
	result, err := s.client.Collection(s.collection).Documents().Search(ctx, searchParams(q))
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка поиска сиделок: %w", err)
	}

	items := make([]domain.CaregiverListItem, 0)
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			doc, err := decodeDocument(*hit.Document)
			if err != nil {
				s.logger.Warn("пропущен некорректный документ индекса", zap.Error(err))
				continue
			}
			items = append(items, doc.ListItem())
		}
	}

	total := len(items)
	if result.Found != nil {
		total = *result.Found
	}

	return items, total, nil
}

func decodeDocument(raw map[string]interface{}) (Document, error) {
	var doc Document
	b, err := json.Marshal(raw)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(b, &doc)
	return doc, err
}

func searchParams(q domain.CaregiverSearch) *api.SearchCollectionParams {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		query = "*"
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("full_name,description"),
		SortBy:  pointer.String("rating:desc,updated_at:desc"),
		Offset:  pointer.Int(offset),
		Limit:   pointer.Int(limit),
	}
	if filter := filterBy(q); filter != "" {
		params.FilterBy = pointer.String(filter)
	}

	return params
}

// filterBy собирает выражение filter_by Typesense.
func filterBy(q domain.CaregiverSearch) string {
	var clauses []string

	if len(q.Specializations) > 0 {
		values := make([]string, 0, len(q.Specializations))
		for _, s := range q.Specializations {
			if s = strings.TrimSpace(s); s != "" {
				values = append(values, "`"+strings.ReplaceAll(s, "`", "")+"`")
			}
		}
		if len(values) > 0 {
			clauses = append(clauses, "specialization_ids:=["+strings.Join(values, ",")+"]")
		}
	}
	if q.MaxDayPrice != nil {
		clauses = append(clauses, "day_price:<="+formatFloat(*q.MaxDayPrice))
	}
	if q.MaxHourPrice != nil {
		clauses = append(clauses, "hour_price:<="+formatFloat(*q.MaxHourPrice))
	}
	if q.MinRating != nil {
		clauses = append(clauses, "rating:>="+formatFloat(*q.MinRating))
	}

	return strings.Join(clauses, " && ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DisabledStore используется, когда Typesense не настроен.
type DisabledStore struct{}

func (DisabledStore) Upsert(context.Context, Document) error { return ErrDisabled }

func (DisabledStore) Delete(context.Context, string) error { return ErrDisabled }

func (DisabledStore) Search(context.Context, domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error) {
	return nil, 0, ErrDisabled
}
