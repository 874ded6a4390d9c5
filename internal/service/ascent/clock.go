package ascent

import (
	"context"
	"sync"
	"time"
)

// Clock единый источник тиков для всех раундов с растущим множителем
type Clock struct {
	mtx    sync.RWMutex
	period time.Duration
	subs   map[string]chan<- struct{}
}

func NewClock(period time.Duration) *Clock {
	return &Clock{
		period: period,
		subs:   make(map[string]chan<- struct{}),
	}
}

func (c *Clock) Subscribe(id string, ch chan<- struct{}) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.subs[id] = ch
}

func (c *Clock) Unsubscribe(id string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	delete(c.subs, id)
}

func (c *Clock) Subscribers() int {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return len(c.subs)
}

// Tick рассылает тик подписчикам. Не блокируется: тик для переполненного ящика теряется
func (c *Clock) Tick() {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run тикает с периодом часов до отмены ctx
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}
