package notify

import (
	"context"
	"sync"

	"travel-dashboard/internal/domain"
)

// Bus рассылает события изменения кэша подписчикам внутри процесса.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(domain.CacheUpdate)
}

var _ domain.Notifier = (*Bus)(nil)

// NewBus создаёт шину событий.
func NewBus() *Bus {
	return &Bus{}
}

// Publish синхронно вызывает всех подписчиков.
func (b *Bus) Publish(ctx context.Context, update domain.CacheUpdate) error {
	b.mu.RLock()
	handlers := make([]func(domain.CacheUpdate), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(update)
	}
	return nil
}

// Subscribe регистрирует обработчик.
func (b *Bus) Subscribe(fn func(domain.CacheUpdate)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Fanout объединяет несколько нотификаторов: локальная шина плюс
// межпроцессный транспорт. Подписка уходит во все составляющие.
type Fanout struct {
	notifiers []domain.Notifier
}

var _ domain.Notifier = (*Fanout)(nil)

// NewFanout создаёт составной нотификатор.
func NewFanout(notifiers ...domain.Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

// Publish публикует событие во все нотификаторы, возвращая первую ошибку.
func (f *Fanout) Publish(ctx context.Context, update domain.CacheUpdate) error {
	var firstErr error
	for _, n := range f.notifiers {
		if err := n.Publish(ctx, update); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe регистрирует обработчик во всех нотификаторах.
func (f *Fanout) Subscribe(fn func(domain.CacheUpdate)) {
	for _, n := range f.notifiers {
		n.Subscribe(fn)
	}
}
