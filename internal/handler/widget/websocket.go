package widget

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PandeyAnukrati/Carti/internal/observability/metrics"
	"github.com/PandeyAnukrati/Carti/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// command is a widget operation sent by the UI over the socket.
type command struct {
	Type string `json:"type"` // open, close, send, reset, state
	Text string `json:"text,omitempty"`
}

type event struct {
	Type      string        `json:"type"`
	Data      stateResponse `json:"data"`
	Timestamp int64         `json:"timestamp"`
}

// handleWebSocket runs the widget's live channel: commands in, state
// snapshots out. Each command is handled on the read loop, so snapshots are
// written in command order.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.Default.WidgetConnections.Inc()
	defer metrics.Default.WidgetConnections.Dec()

	widget := h.widget(r)
	ctx := r.Context()

	if err := h.writeState(conn, widget); err != nil {
		return
	}

	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}

		switch cmd.Type {
		case "open":
			widget.Gate.Open()
		case "close":
			widget.Gate.Close()
		case "send":
			widget.Controller.Send(ctx, cmd.Text)
		case "reset":
			widget.Controller.Reset(ctx)
		case "state":
			// snapshot only
		default:
			h.log.Debug().Str("type", cmd.Type).Msg("ignoring unknown widget command")
			continue
		}

		if err := h.writeState(conn, widget); err != nil {
			return
		}
	}
}

func (h *Handler) writeState(conn *websocket.Conn, w *session.Widget) error {
	return conn.WriteJSON(event{
		Type:      "state",
		Data:      snapshot(w),
		Timestamp: time.Now().UnixMilli(),
	})
}
