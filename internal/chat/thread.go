// Package chat keeps one user's live view of a conversation: full history on
// open, realtime inserts merged in as they arrive.
package chat

import (
	"context"
	"encoding/json"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
)

type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Backend is the action surface a thread drives.
type Backend interface {
	GetMessages(ctx context.Context, otherID string) []*model.Message
	SendMessage(ctx context.Context, in actions.SendMessageInput) model.ActionResult
	PayBill(ctx context.Context, billID string) model.ActionResult
}

type UpdateKind string

const (
	UpdateSnapshot UpdateKind = "snapshot"
	UpdateMessage  UpdateKind = "message"
	UpdateState    UpdateKind = "state"
	UpdateError    UpdateKind = "error"
)

// Update is pushed to the thread's consumer after every visible change.
type Update struct {
	Kind     UpdateKind
	State    State
	Messages []*model.Message
	Message  *model.Message
	Err      string
}

type commandKind int

const (
	cmdOpen commandKind = iota
	cmdSend
	cmdPayBill
	cmdClose
	cmdReport
)

type command struct {
	kind  commandKind
	other uuid.UUID
	arg   string
}

// Thread is owned by a single goroutine: every mutation of the message set
// happens in run, so events, commands and refetches never interleave.
type Thread struct {
	ctx     context.Context
	self    uuid.UUID
	backend Backend
	broker  messaging.Broker
	metrics *metrics.Metrics
	log     zerolog.Logger

	cmds    chan command
	updates chan Update
	state   atomic.Int32

	// owned by run
	other    uuid.UUID
	messages map[uuid.UUID]*model.Message
	events   <-chan []byte
	release  context.CancelFunc
}

// NewThread starts a thread for self. It stops when ctx is cancelled, after
// which Updates is closed.
func NewThread(ctx context.Context, self uuid.UUID, backend Backend, broker messaging.Broker, m *metrics.Metrics, log zerolog.Logger) *Thread {
	t := &Thread{
		ctx:      ctx,
		self:     self,
		backend:  backend,
		broker:   broker,
		metrics:  m,
		log:      log.With().Str("component", "chat").Str("user_id", self.String()).Logger(),
		cmds:     make(chan command),
		updates:  make(chan Update, 64),
		messages: make(map[uuid.UUID]*model.Message),
	}
	go t.run()
	return t
}

func (t *Thread) Updates() <-chan Update {
	return t.updates
}

func (t *Thread) State() State {
	return State(t.state.Load())
}

// Open switches the thread to a conversation with other, dropping any
// previous one.
func (t *Thread) Open(other uuid.UUID) {
	t.submit(command{kind: cmdOpen, other: other})
}

// Send posts content to the open conversation. The message shows up through
// the realtime channel, not as a direct echo.
func (t *Thread) Send(content string) {
	t.submit(command{kind: cmdSend, arg: content})
}

// PayBill pays the bill, then reloads the whole conversation.
func (t *Thread) PayBill(billID string) {
	t.submit(command{kind: cmdPayBill, arg: billID})
}

// Close releases the open conversation and returns to idle.
func (t *Thread) Close() {
	t.submit(command{kind: cmdClose})
}

// Report pushes an error update to the consumer.
func (t *Thread) Report(msg string) {
	t.submit(command{kind: cmdReport, arg: msg})
}

func (t *Thread) submit(cmd command) {
	select {
	case t.cmds <- cmd:
	case <-t.ctx.Done():
	}
}

func (t *Thread) run() {
	defer func() {
		t.unsubscribe()
		close(t.updates)
	}()

	for {
		select {
		case <-t.ctx.Done():
			return
		case cmd := <-t.cmds:
			t.handle(cmd)
		case raw, ok := <-t.events:
			if !ok {
				t.events = nil
				t.resync()
				continue
			}
			t.onEvent(raw)
		}
	}
}

func (t *Thread) handle(cmd command) {
	switch cmd.kind {
	case cmdOpen:
		t.open(cmd.other)
	case cmdSend:
		if t.State() != StateReady {
			t.emit(Update{Kind: UpdateError, Err: "no conversation open"})
			return
		}
		res := t.backend.SendMessage(t.ctx, actions.SendMessageInput{
			ReceiverID: t.other.String(),
			Content:    cmd.arg,
		})
		if res.Error != "" {
			t.emit(Update{Kind: UpdateError, Err: res.Error})
		}
	case cmdPayBill:
		if t.State() != StateReady {
			t.emit(Update{Kind: UpdateError, Err: "no conversation open"})
			return
		}
		res := t.backend.PayBill(t.ctx, cmd.arg)
		if res.Error != "" {
			t.emit(Update{Kind: UpdateError, Err: res.Error})
			return
		}
		t.merge(t.backend.GetMessages(t.ctx, t.other.String()))
		t.emit(Update{Kind: UpdateSnapshot, State: StateReady, Messages: t.snapshot()})
	case cmdClose:
		t.unsubscribe()
		t.other = uuid.Nil
		t.messages = make(map[uuid.UUID]*model.Message)
		t.setState(StateIdle)
	case cmdReport:
		t.emit(Update{Kind: UpdateError, Err: cmd.arg})
	}
}

// open subscribes before fetching history so nothing inserted in between is
// lost; duplicates collapse in the merge.
func (t *Thread) open(other uuid.UUID) {
	t.unsubscribe()
	t.other = other
	t.messages = make(map[uuid.UUID]*model.Message)
	t.setState(StateLoading)

	subCtx, cancel := context.WithCancel(t.ctx)
	events, err := t.broker.Subscribe(subCtx, messaging.TableChannel("messages"))
	if err != nil {
		cancel()
		t.log.Error().Err(err).Msg("realtime subscribe failed")
		t.emit(Update{Kind: UpdateError, Err: "realtime unavailable"})
	} else {
		t.events = events
		t.release = cancel
	}

	t.merge(t.backend.GetMessages(t.ctx, other.String()))
	t.state.Store(int32(StateReady))
	t.emit(Update{Kind: UpdateSnapshot, State: StateReady, Messages: t.snapshot()})
}

// resync reopens the current conversation after the broker dropped the
// subscription, refetching whatever was missed.
func (t *Thread) resync() {
	if t.other == uuid.Nil {
		return
	}
	t.log.Warn().Str("counterparty_id", t.other.String()).Msg("realtime subscription lost, resyncing")
	t.open(t.other)
}

func (t *Thread) unsubscribe() {
	if t.release != nil {
		t.release()
		t.release = nil
	}
	t.events = nil
}

func (t *Thread) onEvent(raw []byte) {
	var event struct {
		Type   string        `json:"type"`
		Table  string        `json:"table"`
		Record model.Message `json:"record"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		t.log.Warn().Err(err).Msg("dropping malformed realtime event")
		return
	}
	if event.Table != "messages" || (event.Type != messaging.EventInsert && event.Type != messaging.EventUpdate) {
		return
	}
	msg := &event.Record
	if t.other == uuid.Nil || !msg.Involves(t.self, t.other) {
		return
	}

	if t.put(msg) {
		if t.metrics != nil {
			t.metrics.RealtimeDelivered.Inc()
		}
		t.emit(Update{Kind: UpdateMessage, Message: msg, Messages: t.snapshot()})
	}
}

func (t *Thread) merge(msgs []*model.Message) {
	for _, m := range msgs {
		if m != nil && m.Involves(t.self, t.other) {
			t.put(m)
		}
	}
}

// put stores m unless a copy at least as new is already held. It reports
// whether the set changed.
func (t *Thread) put(m *model.Message) bool {
	if existing, ok := t.messages[m.ID]; ok && !m.CreatedAt.After(existing.CreatedAt) {
		return false
	}
	t.messages[m.ID] = m
	return true
}

func (t *Thread) snapshot() []*model.Message {
	out := make([]*model.Message, 0, len(t.messages))
	for _, m := range t.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (t *Thread) setState(s State) {
	t.state.Store(int32(s))
	t.emit(Update{Kind: UpdateState, State: s})
}

func (t *Thread) emit(u Update) {
	select {
	case t.updates <- u:
	case <-t.ctx.Done():
	}
}
