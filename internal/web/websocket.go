package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JonMunkholm/fileparser/internal/core"
	"github.com/JonMunkholm/fileparser/internal/logging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// initialJobs is the first message on every websocket connection.
type initialJobs struct {
	Type string           `json:"type"`
	Jobs []core.JobRecord `json:"jobs"`
}

// handleWebSocket streams job_update and job_deleted events after an
// initial_jobs snapshot. Messages from the client are read only to notice
// disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Subscribe before the snapshot so no transition falls in between.
	events, cancel := s.service.Events().Subscribe()
	defer cancel()

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(initialJobs{Type: "initial_jobs", Jobs: s.service.Jobs("")}); err != nil {
		logger.Debug("websocket snapshot write failed", "error", err)
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
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

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	logger.Debug("websocket client connected", "subscribers", s.service.Events().SubscriberCount())
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			logger.Debug("websocket client disconnected")
			return
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		}
	}
}
