package feed

import (
	"context"
	"minigames_backend/internal/model"
	"minigames_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// defaultBuffer Сколько событий может ждать один подписчик
const defaultBuffer = 64

// remoteBuffer Сколько событий может ждать отправки во внешнюю шину
const remoteBuffer = 1024

// Remote внешняя шина, куда дублируются события
type Remote interface {
	Publish(ev model.FeedEvent)
}

// Broker раздаёт события подписчикам внутри процесса.
// Медленный подписчик или внешняя шина теряют события, но не задерживают игру
type Broker struct {
	mtx    sync.RWMutex
	nextID uint64
	subs   map[int64]map[uint64]chan model.FeedEvent
	buffer int
	remote Remote
	outbox chan model.FeedEvent
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		subs:   make(map[int64]map[uint64]chan model.FeedEvent),
		buffer: buffer,
		outbox: make(chan model.FeedEvent, remoteBuffer),
	}
}

// SetRemote включает дублирование событий во внешнюю шину. Отправляет Forward
func (b *Broker) SetRemote(r Remote) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.remote = r
}

// Presence реакция игры на подключение и отключение игрока
type Presence interface {
	Reconnect(userID int64)
	Disconnect(userID int64)
}

// Subscribe канал событий пользователя и общих событий. cancel закрывает канал
func (b *Broker) Subscribe(userID int64) (<-chan model.FeedEvent, func()) {
	return b.SubscribeTracked(userID, nil)
}

// SubscribeTracked как Subscribe, дополнительно сообщает p о подключении
// и об уходе последнего подписчика пользователя. p вызывается под замком брокера
func (b *Broker) SubscribeTracked(userID int64, p Presence) (<-chan model.FeedEvent, func()) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan model.FeedEvent, b.buffer)

	if b.subs[userID] == nil {
		b.subs[userID] = make(map[uint64]chan model.FeedEvent)
	}
	b.subs[userID][id] = ch
	if p != nil {
		p.Reconnect(userID)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mtx.Lock()
			defer b.mtx.Unlock()

			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
				if p != nil {
					p.Disconnect(userID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish доставка локальным подписчикам и постановка в очередь внешней шины
func (b *Broker) Publish(ev model.FeedEvent) {
	b.Deliver(ev)

	b.mtx.RLock()
	remote := b.remote
	b.mtx.RUnlock()
	if remote == nil {
		return
	}

	select {
	case b.outbox <- ev:
	default:
		logger.Warn("feed remote queue is full, event dropped", zap.String("type", string(ev.Type)))
	}
}

// Forward отправляет события из очереди во внешнюю шину до отмены ctx
func (b *Broker) Forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.outbox:
			b.mtx.RLock()
			remote := b.remote
			b.mtx.RUnlock()
			if remote != nil {
				remote.Publish(ev)
			}
		}
	}
}

// Deliver доставка только локальным подписчикам
func (b *Broker) Deliver(ev model.FeedEvent) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	if ev.Broadcast() {
		for _, user := range b.subs {
			for _, ch := range user {
				send(ch, ev)
			}
		}
		return
	}

	for _, ch := range b.subs[ev.UserID] {
		send(ch, ev)
	}
}

func send(ch chan model.FeedEvent, ev model.FeedEvent) {
	select {
	case ch <- ev:
	default:
	}
}

// Subscribers количество активных подписок пользователя
func (b *Broker) Subscribers(userID int64) int {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return len(b.subs[userID])
}
