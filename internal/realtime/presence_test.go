package realtime_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
)

func TestStartEditReachesPeerWithSenderIdentity(t *testing.T) {
	fx := newFixture()
	a, senderA := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")

	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderA.messages = nil
	senderB.messages = nil

	fx.dispatch(a, realtime.EventStartEdit, `{"projectId":"42","taskId":"7"}`)

	got := senderB.received(t)
	if len(got) != 1 {
		t.Fatalf("Expected exactly 1 delivery to peer, got %d", len(got))
	}
	msg := got[0]
	if msg.Event != realtime.EventUserEditing {
		t.Errorf("Expected %q, got %q", realtime.EventUserEditing, msg.Event)
	}
	if msg.Actor == nil || msg.Actor.ID != "user-a" || msg.Actor.Name != "Ada" {
		t.Errorf("Expected sender identity on event, got %+v", msg.Actor)
	}
	var payload struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.TaskID != "7" {
		t.Errorf("Expected taskId 7, got %q", payload.TaskID)
	}

	// The sender never receives its own signal.
	if got := len(senderA.received(t)); got != 0 {
		t.Errorf("Sender received its own signal echoed back, %d messages", got)
	}
}

func TestJoinAnnouncesPresenceWithTimestamp(t *testing.T) {
	fx := newFixture()
	a, senderA := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")

	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderA.messages = nil
	senderB.messages = nil

	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)

	got := senderB.received(t)
	if len(got) != 1 || got[0].Event != realtime.EventUserJoined {
		t.Fatalf("Expected one user-joined, got %+v", got)
	}
	if got[0].TS == nil {
		t.Error("user-joined must carry a timestamp")
	}
	if got[0].Actor == nil || got[0].Actor.ID != "user-a" {
		t.Errorf("user-joined must carry the joiner's identity, got %+v", got[0].Actor)
	}

	// The joiner receives the presence snapshot, not its own announcement.
	gotA := senderA.received(t)
	if len(gotA) != 1 || gotA[0].Event != realtime.EventRoomMembers {
		t.Fatalf("Expected one room-members at the joiner, got %+v", gotA)
	}
	var members []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(gotA[0].Payload, &members); err != nil {
		t.Fatalf("failed to decode member snapshot: %v", err)
	}
	ids := make(map[string]bool, len(members))
	for _, m := range members {
		ids[m.ID] = true
	}
	if len(members) != 2 || !ids["user-a"] || !ids["user-b"] {
		t.Errorf("Snapshot must list both present users, got %+v", members)
	}
}

func TestSignalToUnjoinedRoomIsDropped(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderB.messages = nil

	// A never joined project-42.
	fx.dispatch(a, realtime.EventTyping, `{"projectId":"42","taskId":"7"}`)

	if got := len(senderB.received(t)); got != 0 {
		t.Errorf("Signal from non-member must be dropped, got %d deliveries", got)
	}
}

func TestLeaveThenSilence(t *testing.T) {
	fx := newFixture()
	a, senderA := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderA.messages = nil
	senderB.messages = nil

	fx.dispatch(a, realtime.EventLeaveRoom, `{"projectId":"42"}`)

	got := senderB.received(t)
	if len(got) != 1 || got[0].Event != realtime.EventUserLeft {
		t.Fatalf("Expected one user-left at peer, got %+v", got)
	}

	// After leaving, A must receive no further broadcasts to the room.
	fx.dispatch(b, realtime.EventTyping, `{"projectId":"42","taskId":"9"}`)
	if got := len(senderA.received(t)); got != 0 {
		t.Errorf("Departed member still received %d broadcasts", got)
	}

	// Leaving a room never joined announces nothing.
	senderB.messages = nil
	fx.dispatch(a, realtime.EventLeaveRoom, `{"projectId":"42"}`)
	if got := len(senderB.received(t)); got != 0 {
		t.Errorf("Redundant leave produced %d broadcasts", got)
	}
}

func TestDisconnectSynthesizesTerminalSignals(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderB.messages = nil

	// Abrupt disconnect: no leave-room was ever sent.
	fx.router.HandleDisconnect(a.ID)

	got := senderB.received(t)
	var userLeft int
	seen := make(map[string]int)
	for _, msg := range got {
		seen[msg.Event]++
		if msg.Event == realtime.EventUserLeft {
			userLeft++
			if msg.Actor == nil || msg.Actor.ID != "user-a" {
				t.Errorf("user-left must identify the departed user, got %+v", msg.Actor)
			}
			if msg.TS == nil {
				t.Error("user-left must carry a timestamp")
			}
		}
	}
	if userLeft != 1 {
		t.Errorf("Expected exactly one user-left, got %d (events: %v)", userLeft, seen)
	}
	for _, terminal := range []string{
		realtime.EventUserStoppedEditing,
		realtime.EventUserStoppedTyping,
		realtime.EventDragEnded,
	} {
		if seen[terminal] != 1 {
			t.Errorf("Expected one synthesized %s, got %d", terminal, seen[terminal])
		}
	}

	// The registry must no longer enumerate A anywhere.
	for _, peer := range fx.manager.RoomPeers(realtime.ProjectRoom("42"), uuid.Nil) {
		if peer.ID() == a.ID {
			t.Error("Room still enumerates the disconnected session")
		}
	}
	if _, found := fx.manager.GetSession(a.ID); found {
		t.Error("Disconnected session still registered")
	}

	// Teardown is idempotent; no duplicate user-left on a second call.
	senderB.messages = nil
	fx.router.HandleDisconnect(a.ID)
	if got := len(senderB.received(t)); got != 0 {
		t.Errorf("Second disconnect produced %d broadcasts", got)
	}
}

func TestSendNotificationReachesAllUserSessions(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	_, senderB1 := fx.connect(t, "user-b", "Bob")
	_, senderB2 := fx.connect(t, "user-b", "Bob") // second tab

	fx.dispatch(a, realtime.EventSendNotification, `{"userId":"user-b","notification":{"kind":"mention","text":"look at task 7"}}`)

	for i, sender := range []*fakeSender{senderB1, senderB2} {
		got := sender.received(t)
		if len(got) != 1 || got[0].Event != realtime.EventNotificationReceived {
			t.Fatalf("Session %d: expected one notification-received, got %+v", i, got)
		}
		if got[0].Actor == nil || got[0].Actor.ID != "user-a" {
			t.Errorf("Session %d: notification must carry the sender identity", i)
		}
		if got[0].TS == nil {
			t.Errorf("Session %d: notification must carry a timestamp", i)
		}
	}
}

func TestCursorMoveRelaysPosition(t *testing.T) {
	fx := newFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderB.messages = nil

	fx.dispatch(a, realtime.EventCursorMove, `{"projectId":"42","position":{"x":10,"y":20}}`)

	got := senderB.received(t)
	if len(got) != 1 || got[0].Event != realtime.EventCursorUpdated {
		t.Fatalf("Expected one cursor-updated, got %+v", got)
	}
	var payload struct {
		Position struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"position"`
	}
	if err := json.Unmarshal(got[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Position.X != 10 || payload.Position.Y != 20 {
		t.Errorf("Cursor position mangled in relay: %+v", payload.Position)
	}
}
