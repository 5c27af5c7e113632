package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/imagehubcc/titan-sniper/internal/events"
	"github.com/imagehubcc/titan-sniper/internal/observability"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// WebSocketHandler streams lifecycle events to a UI client. The first
// frame is a full state snapshot; everything after is incremental.
func (a *API) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := a.broker.Subscribe()
	observability.EventSubscribers.Inc()
	log := a.log.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Info("websocket client connected")

	defer func() {
		a.broker.Unsubscribe(sub)
		observability.EventSubscribers.Dec()
		conn.Close()
		log.Info("websocket client disconnected")
	}()

	initial := wsMessage{
		Type:      "initial_data",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"tasks":  a.mgr.Tasks(),
			"orders": a.mgr.Orders(),
			"config": a.runtime.Config().Sanitized(),
			"logs":   a.logEntries(),
		},
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(initial); err != nil {
		log.Warn("initial snapshot write failed", zap.Error(err))
		return
	}

	// Reader: the client sends nothing meaningful, but reads are needed
	// to process pongs and detect the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(1024)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(a.toWSMessage(ev)); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (a *API) toWSMessage(ev events.Event) wsMessage {
	return wsMessage{
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp,
		Data:      ev.Data,
	}
}

func (a *API) logEntries() []observability.LogEntry {
	if a.logs == nil {
		return nil
	}
	return a.logs.Entries()
}
