package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/domain"
	apperrors "twocare/pkg/errors"
)

type Queue interface {
	FetchNext(ctx context.Context) (*domain.OutboxEntry, error)
	MarkDone(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, attempts int, nextTry time.Time, lastError string) error
	MarkDead(ctx context.Context, id int64, attempts int, lastError string) error
}

type CaregiverSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error)
}

// WorkerPool разбирает outbox и переносит профили сиделок в поисковый индекс.
type WorkerPool struct {
	queue      Queue
	caregivers CaregiverSource
	store      Store
	notifier   Notifier
	logger     *zap.Logger
	cfg        config.MirrorConfig

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWorkerPool(queue Queue, caregivers CaregiverSource, store Store, notifier Notifier, cfg config.MirrorConfig, logger *zap.Logger) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &WorkerPool{
		queue:      queue,
		caregivers: caregivers,
		store:      store,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
		wake:       make(chan struct{}, cfg.Workers),
		stop:       make(chan struct{}),
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		<-p.stop
	}()

	p.wg.Add(1)
	go p.relayWakeups(ctx)

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info("синхронизация поискового индекса запущена", zap.Int("workers", p.cfg.Workers))
}

// Stop останавливает воркеры и ждет их завершения. Повторный вызов безопасен.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *WorkerPool) relayWakeups(ctx context.Context) {
	defer p.wg.Done()

	for range p.notifier.Wakeups(ctx) {
		for i := 0; i < p.cfg.Workers; i++ {
			select {
			case p.wake <- struct{}{}:
			default:
			}
		}
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		p.drain(ctx, id)

		select {
		case <-ctx.Done():
			p.logger.Debug("воркер синхронизации остановлен", zap.Int("worker", id))
			return
		case <-ticker.C:
		case <-p.wake:
		}
	}
}

// drain обрабатывает задания, пока очередь не опустеет.
func (p *WorkerPool) drain(ctx context.Context, id int) {
	for ctx.Err() == nil {
		entry, err := p.queue.FetchNext(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Error("ошибка получения задания синхронизации", zap.Int("worker", id), zap.Error(err))
			}
			return
		}
		if entry == nil {
			return
		}

		p.process(ctx, entry)
	}
}

func (p *WorkerPool) process(ctx context.Context, entry *domain.OutboxEntry) {
	err := p.push(ctx, entry.CaregiverID)
	if err == nil {
		if err := p.queue.MarkDone(ctx, entry.ID); err != nil {
			p.logger.Error("ошибка завершения задания синхронизации", zap.Int64("entry_id", entry.ID), zap.Error(err))
		}
		return
	}
	if ctx.Err() != nil {
		// остановка: задание вернется в очередь после истечения аренды
		return
	}

	attempts := entry.Attempts + 1
	fields := []zap.Field{
		zap.Int64("entry_id", entry.ID),
		zap.String("caregiver_id", entry.CaregiverID.String()),
		zap.Int("attempt", attempts),
		zap.Error(err),
	}

	if attempts >= entry.MaxAttempts {
		p.logger.Error("синхронизация профиля сиделки не удалась, задание отброшено", fields...)
		if err := p.queue.MarkDead(ctx, entry.ID, attempts, err.Error()); err != nil {
			p.logger.Error("ошибка перевода задания в dead", zap.Int64("entry_id", entry.ID), zap.Error(err))
		}
		return
	}

	delay := Backoff(attempts, p.cfg.BaseBackoff, p.cfg.MaxBackoff)
	p.logger.Warn("ошибка синхронизации профиля сиделки, повтор позже", append(fields, zap.Duration("retry_in", delay))...)
	if err := p.queue.Reschedule(ctx, entry.ID, attempts, time.Now().Add(delay), err.Error()); err != nil {
		p.logger.Error("ошибка переноса задания синхронизации", zap.Int64("entry_id", entry.ID), zap.Error(err))
	}
}

// push переносит текущее состояние профиля в индекс; удаленный профиль удаляется из индекса.
func (p *WorkerPool) push(ctx context.Context, caregiverID uuid.UUID) error {
	caregiver, err := p.caregivers.GetByID(ctx, caregiverID)
	if apperrors.IsNotFound(err) {
		return p.store.Delete(ctx, caregiverID.String())
	}
	if err != nil {
		return err
	}
	return p.store.Upsert(ctx, NewDocument(caregiver))
}

// Backoff возвращает задержку перед попыткой attempt: base*2^(attempt-1), не больше max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 5 * time.Minute
	}
	if attempt <= 1 {
		return base
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}
