// Package shell serves calculator windows over a websocket. Every
// connection gets its own workspace, disposed when the connection ends.
package shell

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"Flashover/internal/calc/input"
	"Flashover/internal/calc/run"
	"Flashover/internal/calc/series"
	"Flashover/internal/session"
)

// Message types.
const (
	TypeOpen   = "open"
	TypeRun    = "run"
	TypeSeries = "series"
	TypeClose  = "close"
	TypeList   = "list"

	TypeOpened = "opened"
	TypeResult = "result"
	TypeClosed = "closed"
	TypeError  = "error"
)

// Msg is a client request.
type Msg struct {
	Type       string         `json:"type"`
	Window     uuid.UUID      `json:"window,omitempty"`
	Calculator run.Calculator `json:"calculator,omitempty"`
	Fields     input.Fields   `json:"fields,omitempty"`
	Rows       int            `json:"rows,omitempty"`
}

// WindowInfo describes an open window.
type WindowInfo struct {
	ID         uuid.UUID      `json:"id"`
	Calculator run.Calculator `json:"calculator"`
	Runs       int            `json:"runs"`
}

// Reply answers one Msg.
type Reply struct {
	Type    string         `json:"type"`
	Window  uuid.UUID      `json:"window,omitempty"`
	Output  *run.Output    `json:"output,omitempty"`
	Series  *series.Series `json:"series,omitempty"`
	Windows []WindowInfo   `json:"windows,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Hub handles the messages of one connection.
type Hub struct {
	ws   *session.Workspace
	rows int
}

func NewHub(opts run.Options, rows int) *Hub {
	return &Hub{ws: session.NewWorkspace(opts), rows: rows}
}

func (h *Hub) fail(msg Msg, err error) Reply {
	return Reply{Type: TypeError, Window: msg.Window, Error: err.Error()}
}

// Handle answers msg.
func (h *Hub) Handle(msg Msg) Reply {
	rows := msg.Rows
	if rows <= 0 {
		rows = h.rows
	}
	switch msg.Type {
	case TypeOpen:
		w, err := h.ws.Open(msg.Calculator)
		if err != nil {
			return h.fail(msg, err)
		}
		return Reply{Type: TypeOpened, Window: w.ID}
	case TypeRun:
		w, err := h.ws.Window(msg.Window)
		if err != nil {
			return h.fail(msg, err)
		}
		out := w.Run(msg.Fields, h.ws.Options)
		return Reply{Type: TypeResult, Window: w.ID, Output: &out, Series: w.Series(rows)}
	case TypeSeries:
		w, err := h.ws.Window(msg.Window)
		if err != nil {
			return h.fail(msg, err)
		}
		out, ok := w.FinalResult()
		if !ok {
			return Reply{Type: TypeResult, Window: w.ID}
		}
		return Reply{Type: TypeResult, Window: w.ID, Output: &out, Series: w.Series(rows)}
	case TypeClose:
		if err := h.ws.Close(msg.Window); err != nil {
			return h.fail(msg, err)
		}
		return Reply{Type: TypeClosed, Window: msg.Window}
	case TypeList:
		r := Reply{Type: TypeList, Windows: []WindowInfo{}}
		for _, w := range h.ws.Windows() {
			r.Windows = append(r.Windows, WindowInfo{ID: w.ID, Calculator: w.Calculator, Runs: w.Runs()})
		}
		return r
	}
	log.WithField("type", msg.Type).Warn("shell: unknown message")
	return Reply{Type: TypeError, Error: "unknown message type " + msg.Type}
}

// Close disposes of the hub's workspace.
func (h *Hub) Close() {
	h.ws.Dispose()
}

// Server upgrades HTTP requests to websocket connections.
type Server struct {
	Upgrader websocket.Upgrader
	Options  run.Options
	Rows     int
}

// ServeWs reads messages until the peer goes away. Messages of one
// connection are handled in order.
func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	hub := NewHub(s.Options, s.Rows)
	defer hub.Close()

	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Info("websocket read")
			}
			return
		}
		if err := conn.WriteJSON(hub.Handle(msg)); err != nil {
			log.WithError(err).Info("websocket write")
			return
		}
	}
}
