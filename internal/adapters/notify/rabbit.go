package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// Rabbit рассылает события изменения кэша между экземплярами сервиса
// через fanout-обменник RabbitMQ: каждый экземпляр видит чужие мутации
// так же, как свои.
type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger

	mu       sync.RWMutex
	handlers []func(domain.CacheUpdate)
}

var _ domain.Notifier = (*Rabbit)(nil)

// NewRabbit подключается к RabbitMQ и объявляет fanout-обменник.
func NewRabbit(url, exchange string, logger zerolog.Logger) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("подключение к rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("открытие канала: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", false, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("объявление обменника: %w", err)
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange, log: logger}, nil
}

// Publish отправляет событие в обменник.
func (r *Rabbit) Publish(ctx context.Context, update domain.CacheUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	start := time.Now()
	err = r.ch.PublishWithContext(ctx, r.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", r.exchange, start, err)
	if err != nil {
		return fmt.Errorf("publish update: %w", err)
	}
	return nil
}

// Subscribe регистрирует обработчик входящих событий.
func (r *Rabbit) Subscribe(fn func(domain.CacheUpdate)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, fn)
}

// Listen привязывает эксклюзивную очередь к обменнику и раздаёт события
// подписчикам до отмены контекста.
func (r *Rabbit) Listen(ctx context.Context) error {
	queue, err := r.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("объявление очереди: %w", err)
	}
	if err := r.ch.QueueBind(queue.Name, "", r.exchange, false, nil); err != nil {
		return fmt.Errorf("привязка очереди: %w", err)
	}
	deliveries, err := r.ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("подписка на очередь: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				var update domain.CacheUpdate
				if err := json.Unmarshal(delivery.Body, &update); err != nil {
					r.log.Warn().Err(err).Msg("rabbitmq: некорректное событие")
					continue
				}
				r.mu.RLock()
				handlers := make([]func(domain.CacheUpdate), len(r.handlers))
				copy(handlers, r.handlers)
				r.mu.RUnlock()
				for _, handler := range handlers {
					handler(update)
				}
			}
		}
	}()
	return nil
}

// Close закрывает канал и соединение.
func (r *Rabbit) Close() error {
	if err := r.ch.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
