package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MikeSquared-Agency/Verdict/internal/session"
)

const liveWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is one frame on the live results socket.
type LiveMessage struct {
	Type    string           `json:"type"`
	Payload *session.Results `json:"payload,omitempty"`
}

// LiveHandler pushes refreshed results to a websocket client after every
// mutation of one session.
type LiveHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

func NewLiveHandler(m *session.Manager, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{sessions: m, logger: logger}
}

// Live handles GET /api/v1/sessions/{id}/live. The first frame carries the
// current results; a "deleted" frame ends the stream.
func (h *LiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	updates, cancel, err := h.sessions.Watch(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer cancel()
	current, err := h.sessions.Results(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", "session_id", id, "error", err)
		return
	}
	defer conn.Close()
	h.logger.Debug("live client connected", "session_id", id)

	// reads only detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("websocket error", "session_id", id, "error", err)
				}
				return
			}
		}
	}()

	if err := h.send(conn, LiveMessage{Type: "results", Payload: current}); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			h.logger.Debug("live client disconnected", "session_id", id)
			return
		case res, ok := <-updates:
			if !ok {
				_ = h.send(conn, LiveMessage{Type: "deleted"})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session deleted"),
					time.Now().Add(liveWriteTimeout))
				return
			}
			if err := h.send(conn, LiveMessage{Type: "results", Payload: res}); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) send(conn *websocket.Conn, msg LiveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("failed to send live update", "error", err)
		return err
	}
	return nil
}
