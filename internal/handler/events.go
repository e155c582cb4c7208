package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/oneminute/oneminute-go/internal/middleware"
	"github.com/oneminute/oneminute-go/internal/model"
	"github.com/oneminute/oneminute-go/internal/service"
)

const eventsWriteTimeout = 5 * time.Second

// EventsHandler streams session snapshots over a WebSocket.
type EventsHandler struct {
	service        *service.SessionService
	originPatterns []string
}

// NewEventsHandler creates a new EventsHandler. originPatterns lists the
// cross-origin hosts allowed to connect; same-host requests are always allowed.
func NewEventsHandler(svc *service.SessionService, originPatterns []string) *EventsHandler {
	return &EventsHandler{service: svc, originPatterns: originPatterns}
}

// HandleEvents handles GET /api/v1/session/events requests. The current
// snapshot is sent first, then one message per change. A slow client only
// gets the latest snapshot; it can use the version field to tell. The socket
// is closed with StatusGoingAway once the session is deleted or expires.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	updates := make(chan model.SessionResponse, 1)
	sub, err := h.service.Subscribe(r.Context(), sessionID, func(resp model.SessionResponse) {
		offerLatest(updates, resp)
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer sub.Close()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := writeEvent(ctx, conn, sub.Current); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			conn.Close(websocket.StatusGoingAway, "session ended")
			return
		case resp := <-updates:
			if err := writeEvent(ctx, conn, resp); err != nil {
				slog.Debug("websocket write failed", "session_id", sessionID, "error", err)
				return
			}
		}
	}
}

// offerLatest puts resp on a one-slot channel, replacing any unsent value.
func offerLatest(ch chan model.SessionResponse, resp model.SessionResponse) {
	for {
		select {
		case ch <- resp:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func writeEvent(parent context.Context, conn *websocket.Conn, v model.SessionResponse) error {
	ctx, cancel := context.WithTimeout(parent, eventsWriteTimeout)
	defer cancel()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
