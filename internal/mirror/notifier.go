package mirror

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier будит воркеры синхронизации сразу после записи в outbox,
// не дожидаясь очередного опроса.
type Notifier interface {
	Notify(ctx context.Context) error
	// Wakeups возвращает канал сигналов; канал закрывается после отмены ctx.
	Wakeups(ctx context.Context) <-chan struct{}
}

type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context) error {
	if err := n.client.Publish(ctx, n.channel, "sync").Err(); err != nil {
		return fmt.Errorf("ошибка публикации в канал %s: %w", n.channel, err)
	}
	return nil
}

func (n *RedisNotifier) Wakeups(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	pubsub := n.client.Subscribe(ctx, n.channel)

	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				n.logger.Warn("ошибка закрытия подписки", zap.String("channel", n.channel), zap.Error(err))
			}
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out
}

// NopNotifier используется без Redis: воркеры просыпаются только по таймеру.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context) error { return nil }

func (NopNotifier) Wakeups(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
