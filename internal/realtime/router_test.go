package realtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state/statemanager"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/transport"
)

// --- Test Suite Setup ---

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

// fakeSender records everything broadcast to it.
type fakeSender struct {
	id       uuid.UUID
	messages [][]byte
}

func newFakeSender() *fakeSender {
	return &fakeSender{id: uuid.New()}
}

func (f *fakeSender) ID() uuid.UUID   { return f.id }
func (f *fakeSender) Send(msg []byte) { f.messages = append(f.messages, msg) }
func (f *fakeSender) Close(error)     {}

var _ transport.Sender = (*fakeSender)(nil)

// received decodes the sender's captured messages.
func (f *fakeSender) received(t *testing.T) []serverMessage {
	t.Helper()
	out := make([]serverMessage, 0, len(f.messages))
	for _, raw := range f.messages {
		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("failed to decode captured message %q: %v", raw, err)
		}
		out = append(out, msg)
	}
	return out
}

type serverMessage struct {
	Event   string          `json:"event"`
	Actor   *state.Identity `json:"actor"`
	Payload json.RawMessage `json:"payload"`
	TS      *time.Time      `json:"ts"`
}

type fixture struct {
	manager *statemanager.InMemoryManager
	router  *realtime.EventRouter
}

func newFixture() *fixture {
	logger := newTestLogger()
	manager := statemanager.NewInMemoryManager(logger)
	broadcaster := realtime.NewBroadcaster(logger, manager)
	return &fixture{
		manager: manager,
		router:  realtime.NewEventRouter(logger, manager, broadcaster),
	}
}

// connect registers an authenticated session joined to its own user room.
func (fx *fixture) connect(t *testing.T, userID, name string) (*state.Session, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	sess, err := fx.manager.RegisterSession(sender, state.Identity{ID: userID, Name: name}, "127.0.0.1")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}
	if err := fx.manager.Join(sess.ID, realtime.UserRoom(userID)); err != nil {
		t.Fatalf("auto-join of user room failed: %v", err)
	}
	return sess, sender
}

func (fx *fixture) dispatch(sess *state.Session, event, payload string) {
	msg := fmt.Sprintf(`{"event":%q,"payload":%s}`, event, payload)
	fx.router.HandleMessage(context.Background(), sess.ID, []byte(msg))
}

// --- Dispatch Loop Tests ---

func TestMalformedMessagesAreDropped(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	_, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)

	// None of these may panic or reach peers.
	fx.router.HandleMessage(context.Background(), a.ID, []byte(`not json`))
	fx.router.HandleMessage(context.Background(), a.ID, []byte(`{"payload":{}}`))
	fx.router.HandleMessage(context.Background(), a.ID, []byte(`{"event":"no-such-event","payload":{}}`))
	fx.dispatch(a, realtime.EventStartEdit, `{"taskId":"7"}`) // missing projectId

	if got := len(senderB.received(t)); got != 0 {
		t.Errorf("Expected no deliveries from malformed traffic, got %d", got)
	}
}

func TestEventsForDepartedSessionAreDropped(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderB.messages = nil

	fx.router.HandleDisconnect(a.ID)
	senderB.messages = nil

	// A message that was still in flight when teardown finished.
	fx.dispatch(a, realtime.EventTyping, `{"projectId":"42","taskId":"7"}`)
	if got := len(senderB.received(t)); got != 0 {
		t.Errorf("Departed session's event must not be delivered, got %d messages", got)
	}
}

func TestFIFOPerSenderAndRoom(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderB.messages = nil

	for i := 0; i < 10; i++ {
		fx.dispatch(a, realtime.EventDrag, fmt.Sprintf(`{"projectId":"42","taskId":"7","position":%d}`, i))
	}

	got := senderB.received(t)
	if len(got) != 10 {
		t.Fatalf("Expected 10 deliveries, got %d", len(got))
	}
	for i, msg := range got {
		if msg.Event != realtime.EventTaskBeingDragged {
			t.Fatalf("Unexpected event %q at index %d", msg.Event, i)
		}
		var payload struct {
			Position int `json:"position"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Position != i {
			t.Errorf("Out-of-order delivery: expected position %d, got %d", i, payload.Position)
		}
	}
}

func TestDuplicateHandlerRegistrationPanics(t *testing.T) {
	fx := newFixture()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate handler registration")
		}
	}()
	fx.router.Register(realtime.EventJoinRoom, func(context.Context, *state.Session, gjson.Result) {})
}
