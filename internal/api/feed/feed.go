package feed

import (
	"minigames_backend/internal/middleware"
	"minigames_backend/internal/model"
	svcfeed "minigames_backend/internal/service/feed"
	"minigames_backend/pkg/logger"
	"minigames_backend/pkg/resp"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// Subscriber источник событий, сообщающий игре о присутствии игрока
type Subscriber interface {
	SubscribeTracked(userID int64, p svcfeed.Presence) (<-chan model.FeedEvent, func())
}

type HandlerDeps struct {
	Feed     Subscriber
	Presence svcfeed.Presence
}

type Handler struct {
	feed     Subscriber
	presence svcfeed.Presence
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{feed: deps.Feed, presence: deps.Presence}
}

// Stream websocket с событиями игрока: множитель по тикам и итоги раундов
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "user id not found in context")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	// Раунды замирают, только когда закрыто последнее соединение игрока
	events, cancel := h.feed.SubscribeTracked(userID, h.presence)
	logger.Info("feed connected", zap.Int64("user_id", userID))

	defer func() {
		cancel()
		_ = conn.Close()
		logger.Info("feed disconnected", zap.Int64("user_id", userID))
	}()

	closed := make(chan struct{})
	go readLoop(conn, closed)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Error("failed to encode feed event", zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop ловит закрытие соединения, входящие сообщения игнорируются
func readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
