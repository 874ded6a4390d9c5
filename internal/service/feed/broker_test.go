package feed

import (
	"context"
	"minigames_backend/internal/model"
	"sync"
	"testing"
	"time"
)

type recordingRemote struct {
	mu     sync.Mutex
	events []model.FeedEvent
}

func (r *recordingRemote) Publish(ev model.FeedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestBrokerRoutesByUser(t *testing.T) {
	b := NewBroker(4)
	one, cancelOne := b.Subscribe(1)
	defer cancelOne()
	two, cancelTwo := b.Subscribe(2)
	defer cancelTwo()

	b.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 1, Multiplier: "1.01"})

	if len(one) != 1 {
		t.Fatalf("user 1 got %d events, want 1", len(one))
	}
	if len(two) != 0 {
		t.Fatalf("user 2 got %d events, want 0", len(two))
	}
	if ev := <-one; ev.Multiplier != "1.01" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestBrokerBroadcastsRecentWins(t *testing.T) {
	b := NewBroker(4)
	one, cancelOne := b.Subscribe(1)
	defer cancelOne()
	two, cancelTwo := b.Subscribe(2)
	defer cancelTwo()

	b.Publish(model.FeedEvent{Type: model.FeedRecentWin, UserID: 1, Returned: 1000})

	if len(one) != 1 || len(two) != 1 {
		t.Fatalf("buffered = %d, %d; want 1, 1", len(one), len(two))
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe(1)

	for i := 0; i < 3; i++ {
		b.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 1, Tick: int64(i + 1)})
	}
	if ev := <-ch; ev.Tick != 1 {
		t.Fatalf("tick = %d, want 1", ev.Tick)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel open after cancel")
	}
	if b.Subscribers(1) != 0 {
		t.Fatalf("subscribers = %d, want 0", b.Subscribers(1))
	}
	// Публикация после отписки не паникует
	b.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 1})
}

func (r *recordingRemote) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// blockingRemote не возвращается из Publish, пока не закрыт release
type blockingRemote struct {
	release chan struct{}
	got     chan model.FeedEvent
}

func (r *blockingRemote) Publish(ev model.FeedEvent) {
	<-r.release
	r.got <- ev
}

func TestBrokerForwardsToRemote(t *testing.T) {
	b := NewBroker(1)
	remote := &recordingRemote{}
	b.SetRemote(remote)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Forward(ctx)

	b.Publish(model.FeedEvent{Type: model.FeedReelSettled, UserID: 3})
	b.Deliver(model.FeedEvent{Type: model.FeedReelSettled, UserID: 3})

	deadline := time.Now().Add(2 * time.Second)
	for remote.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if got := remote.count(); got != 1 {
		t.Fatalf("remote got %d events, want 1", got)
	}
}

func TestBlockedRemoteDoesNotDelayPublish(t *testing.T) {
	b := NewBroker(4)
	remote := &blockingRemote{release: make(chan struct{}), got: make(chan model.FeedEvent, remoteBuffer+16)}
	b.SetRemote(remote)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Forward(ctx)

	ch, unsubscribe := b.Subscribe(1)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Очередь переполняется, лишние события отбрасываются
		for i := 0; i < remoteBuffer+10; i++ {
			b.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 1, Tick: int64(i + 1)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on the remote")
	}
	if ev := <-ch; ev.Tick != 1 {
		t.Fatalf("local tick = %d, want 1", ev.Tick)
	}

	close(remote.release)
	select {
	case ev := <-remote.got:
		if ev.Tick != 1 {
			t.Fatalf("remote tick = %d, want 1", ev.Tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("remote never received events")
	}
}

// presenceState последний сообщённый статус игрока
type presenceState struct {
	mu          sync.Mutex
	online      bool
	disconnects int
}

func (p *presenceState) Reconnect(int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = true
}

func (p *presenceState) Disconnect(int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = false
	p.disconnects++
}

func (p *presenceState) snapshot() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online, p.disconnects
}

func TestDisconnectOnlyAfterLastSubscriber(t *testing.T) {
	b := NewBroker(1)
	p := &presenceState{}

	_, cancelA := b.SubscribeTracked(1, p)
	_, cancelB := b.SubscribeTracked(1, p)

	cancelA()
	cancelA()
	if online, n := p.snapshot(); !online || n != 0 {
		t.Fatalf("online = %v, disconnects = %d; want true, 0", online, n)
	}

	cancelB()
	if online, n := p.snapshot(); online || n != 1 {
		t.Fatalf("online = %v, disconnects = %d; want false, 1", online, n)
	}
}

func TestPresenceFollowsConcurrentReconnects(t *testing.T) {
	b := NewBroker(1)
	p := &presenceState{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cancel := b.SubscribeTracked(1, p)
			cancel()
		}()
	}

	// Соединение, открытое последним, остаётся
	wg.Add(1)
	var keep func()
	go func() {
		defer wg.Done()
		_, keep = b.SubscribeTracked(1, p)
	}()
	wg.Wait()
	defer keep()

	if n := b.Subscribers(1); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
	if online, _ := p.snapshot(); !online {
		t.Fatalf("player with an open connection reported offline")
	}
}
