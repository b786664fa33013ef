package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ClientFrame is an inbound message from the widget.
type ClientFrame struct {
	Action         string `json:"action"`
	CounterpartyID string `json:"counterparty_id,omitempty"`
	Content        string `json:"content,omitempty"`
	BillID         string `json:"bill_id,omitempty"`
}

// ServerFrame is pushed to the widget after each thread update.
type ServerFrame struct {
	Type     string           `json:"type"`
	State    string           `json:"state,omitempty"`
	Messages []*model.Message `json:"messages,omitempty"`
	Message  *model.Message   `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// writeWait bounds a single frame write; a client that cannot take a frame in
// time is disconnected.
const writeWait = 10 * time.Second

const (
	ActionOpen    = "open"
	ActionSend    = "send"
	ActionPayBill = "pay_bill"
	ActionClose   = "close"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Upgrade switches an HTTP request to a WebSocket connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &gorillaConnAdapter{conn: ws}, nil
}

// Server runs one thread per connected widget.
type Server struct {
	backend Backend
	broker  messaging.Broker
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewServer(backend Backend, broker messaging.Broker, m *metrics.Metrics, log zerolog.Logger) *Server {
	return &Server{backend: backend, broker: broker, metrics: m, log: log}
}

// Serve blocks until the client disconnects or ctx ends. ctx must carry the
// signed-in user since every backend call is made on its behalf.
func (s *Server) Serve(ctx context.Context, self uuid.UUID, conn Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.metrics != nil {
		s.metrics.RealtimeSessions.Inc()
		defer s.metrics.RealtimeSessions.Dec()
	}

	thread := NewThread(ctx, self, s.backend, s.broker, s.metrics, s.log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(thread, conn)
	}()

	s.readPump(ctx, thread, conn)
	cancel()
	<-done
	conn.Close()
}

func (s *Server) readPump(ctx context.Context, thread *Thread, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Debug().Err(err).Msg("ignoring malformed chat frame")
			continue
		}

		switch frame.Action {
		case ActionOpen:
			other, err := uuid.Parse(frame.CounterpartyID)
			if err != nil {
				thread.Report("invalid counterparty")
				continue
			}
			thread.Open(other)
		case ActionSend:
			thread.Send(frame.Content)
		case ActionPayBill:
			thread.PayBill(frame.BillID)
		case ActionClose:
			thread.Close()
		default:
			s.log.Debug().Str("action", frame.Action).Msg("unknown chat action")
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// writePump is the only writer on conn.
func (s *Server) writePump(thread *Thread, conn Conn) {
	for u := range thread.Updates() {
		data, err := json.Marshal(frameFor(u))
		if err != nil {
			s.log.Error().Err(err).Msg("failed to encode chat frame")
			continue
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			s.log.Debug().Err(err).Msg("failed to set write deadline")
		}
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, data); err != nil {
			conn.Close()
			// drain so the thread never blocks on a dead socket
			for range thread.Updates() {
			}
			return
		}
	}
}

func frameFor(u Update) ServerFrame {
	f := ServerFrame{Type: string(u.Kind), Error: u.Err, Message: u.Message, Messages: u.Messages}
	if u.Kind == UpdateState || u.Kind == UpdateSnapshot {
		f.State = u.State.String()
	}
	return f
}

type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) SetWriteDeadline(t time.Time) error {
	return a.conn.SetWriteDeadline(t)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
