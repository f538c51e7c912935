package realtime

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// HandlerFunc processes one inbound event on behalf of the sending session.
// Handlers run on the sender's read pump, one at a time, which is what
// guarantees FIFO ordering per sender-room pair.
type HandlerFunc func(ctx context.Context, sess *state.Session, payload gjson.Result)

// EventRouter dispatches the fixed inbound event catalog to handlers. It is
// stateless beyond the session it operates on: malformed or unknown events
// are dropped with a log line and never take down the dispatch loop.
type EventRouter struct {
	logger      *slog.Logger
	state       state.Manager
	broadcaster *Broadcaster
	handlers    map[string]HandlerFunc
}

func NewEventRouter(logger *slog.Logger, stateManager state.Manager, broadcaster *Broadcaster) *EventRouter {
	r := &EventRouter{
		logger:      logger.With(slog.String("component", "event_router")),
		state:       stateManager,
		broadcaster: broadcaster,
		handlers:    make(map[string]HandlerFunc),
	}
	r.registerPresenceHandlers()
	return r
}

// Register binds an event name to a handler.
func (r *EventRouter) Register(event string, handler HandlerFunc) {
	if _, exists := r.handlers[event]; exists {
		panic("event handler already registered: " + event)
	}
	r.handlers[event] = handler
}

// HandleMessage is the transport's message callback: parse the envelope,
// look up the handler, run it against the sender's session.
func (r *EventRouter) HandleMessage(ctx context.Context, connID uuid.UUID, msg []byte) {
	if !gjson.ValidBytes(msg) {
		r.logger.Warn("Dropping malformed client message", slog.String("connID", connID.String()))
		return
	}
	parsed := gjson.ParseBytes(msg)
	event := parsed.Get("event").String()
	if event == "" {
		r.logger.Warn("Dropping client message without event name", slog.String("connID", connID.String()))
		return
	}

	handler, ok := r.handlers[event]
	if !ok {
		r.logger.Warn("Received unknown event",
			slog.String("event", event),
			slog.String("connID", connID.String()),
		)
		return
	}

	sess, ok := r.state.GetSession(connID)
	if !ok {
		// The session was torn down while this message was in flight.
		r.logger.Debug("Dropping event for departed session", slog.String("connID", connID.String()))
		return
	}

	r.logger.Debug("Dispatching event",
		slog.String("event", event),
		slog.String("connID", connID.String()),
	)
	handler(ctx, sess, parsed.Get("payload"))
}

// HandleDisconnect is the transport's close callback. Teardown is immediate
// and irreversible: the session is removed from every room first, then the
// peers of each project room it occupied are told it left, with synthesized
// terminal stop signals so no indicator can stay stuck on a crashed client.
func (r *EventRouter) HandleDisconnect(connID uuid.UUID) {
	sess, ok := r.state.GetSession(connID)
	if !ok {
		return
	}
	actor := sess.Identity

	rooms, err := r.state.TeardownSession(connID)
	if err != nil {
		r.logger.Error("Failed to tear down session",
			slog.String("connID", connID.String()),
			slog.Any("error", err),
		)
		return
	}

	for _, roomName := range rooms {
		if !strings.HasPrefix(roomName, "project-") {
			continue
		}
		r.broadcaster.ToRoom(roomName, ServerMessage{Event: EventUserStoppedEditing, Actor: &actor}, uuid.Nil)
		r.broadcaster.ToRoom(roomName, ServerMessage{Event: EventUserStoppedTyping, Actor: &actor}, uuid.Nil)
		r.broadcaster.ToRoom(roomName, ServerMessage{Event: EventDragEnded, Actor: &actor}, uuid.Nil)
		r.broadcaster.ToRoom(roomName, stamped(ServerMessage{Event: EventUserLeft, Actor: &actor}), uuid.Nil)
	}

	r.logger.Info("Session disconnected",
		slog.String("connID", connID.String()),
		slog.String("userID", actor.ID),
		slog.Int("roomsLeft", len(rooms)),
	)
}
