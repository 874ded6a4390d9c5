package feed

import (
	"minigames_backend/internal/middleware"
	"minigames_backend/internal/model"
	svcfeed "minigames_backend/internal/service/feed"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type presence struct {
	mu     sync.Mutex
	calls  []string
	notify chan string
}

func (p *presence) Reconnect(int64)  { p.record("reconnect") }
func (p *presence) Disconnect(int64) { p.record("disconnect") }

func (p *presence) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
	p.notify <- call
}

func TestStreamDeliversUserEvents(t *testing.T) {
	broker := svcfeed.NewBroker(8)
	p := &presence{notify: make(chan string, 4)}
	h := NewHandler(HandlerDeps{Feed: broker, Presence: p})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Stream(w, r.WithContext(middleware.WithUser(r.Context(), 5, false)))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	select {
	case call := <-p.notify:
		if call != "reconnect" {
			t.Fatalf("first call = %s, want reconnect", call)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler did not subscribe")
	}

	broker.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 6, Multiplier: "9.99"})
	broker.Publish(model.FeedEvent{Type: model.FeedMultiplierUpdate, UserID: 5, Multiplier: "1.23"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), `"multiplier":"1.23"`) {
		t.Fatalf("message = %s", msg)
	}

	_ = conn.Close()
	select {
	case call := <-p.notify:
		if call != "disconnect" {
			t.Fatalf("call = %s, want disconnect", call)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("disconnect not reported")
	}
}
