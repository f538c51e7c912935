package realtime_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
)

type testTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

func newNotifierFixture() (*fixture, *realtime.Notifier) {
	fx := newFixture()
	logger := newTestLogger()
	broadcaster := realtime.NewBroadcaster(logger, fx.manager)
	return fx, realtime.NewNotifier(logger, broadcaster)
}

func TestTaskMovedReachesAllMembersIdentically(t *testing.T) {
	fx, notifier := newNotifierFixture()
	a, senderA := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	_, senderC := fx.connect(t, "user-c", "Cleo") // not in the project room

	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderA.messages = nil
	senderB.messages = nil

	task := testTask{ID: "task-7", Title: "write spec", Status: "doing", Position: 2}
	notifier.TaskMoved("42", task)

	if len(senderA.messages) != 1 || len(senderB.messages) != 1 {
		t.Fatalf("Expected 1 delivery per member, got %d/%d", len(senderA.messages), len(senderB.messages))
	}
	// Every member observes the identical bytes.
	if !bytes.Equal(senderA.messages[0], senderB.messages[0]) {
		t.Error("Members observed different payloads for the same durable event")
	}

	got := senderA.received(t)[0]
	if got.Event != realtime.EventTaskMoved {
		t.Errorf("Expected %q, got %q", realtime.EventTaskMoved, got.Event)
	}
	if got.Actor != nil {
		t.Errorf("Durable events carry no actor, got %+v", got.Actor)
	}
	var decoded testTask
	if err := json.Unmarshal(got.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode entity payload: %v", err)
	}
	if decoded != task {
		t.Errorf("Entity payload mangled: %+v", decoded)
	}

	// A user not joined to the project receives nothing.
	if got := len(senderC.messages); got != 0 {
		t.Errorf("Non-member received %d durable events", got)
	}
}

func TestLateJoinerDoesNotReceivePastEvents(t *testing.T) {
	fx, notifier := newNotifierFixture()
	a, _ := fx.connect(t, "user-a", "Ada")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)

	notifier.TaskCreated("42", testTask{ID: "task-1", Title: "early"})

	// B joins after the broadcast; nothing is replayed.
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	for _, msg := range senderB.received(t) {
		if msg.Event == realtime.EventTaskCreated {
			t.Error("Late joiner retroactively received a durable event")
		}
	}
}

func TestProjectDeletedReachesAllMembers(t *testing.T) {
	fx, notifier := newNotifierFixture()
	a, senderA := fx.connect(t, "user-a", "Ada")
	b, senderB := fx.connect(t, "user-b", "Bob")
	fx.dispatch(a, realtime.EventJoinRoom, `{"projectId":"42"}`)
	fx.dispatch(b, realtime.EventJoinRoom, `{"projectId":"42"}`)
	senderA.messages = nil
	senderB.messages = nil

	notifier.ProjectDeleted("42", map[string]string{"id": "42", "name": "Hub"})

	for i, sender := range []*fakeSender{senderA, senderB} {
		got := sender.received(t)
		if len(got) != 1 || got[0].Event != realtime.EventProjectDeleted {
			t.Fatalf("Member %d: expected one project-deleted, got %+v", i, got)
		}
		if got[0].Actor != nil {
			t.Errorf("Member %d: durable events carry no actor", i)
		}
	}
}

func TestNotifyUserTargetsUserRoomOnly(t *testing.T) {
	fx, notifier := newNotifierFixture()
	_, senderA := fx.connect(t, "user-a", "Ada")
	_, senderB := fx.connect(t, "user-b", "Bob")

	notifier.NotifyUser("user-a", map[string]string{"kind": "invitation", "projectId": "42"})

	got := senderA.received(t)
	if len(got) != 1 || got[0].Event != realtime.EventNotificationReceived {
		t.Fatalf("Expected one notification for user-a, got %+v", got)
	}
	if got[0].TS == nil {
		t.Error("notification-received must carry a timestamp")
	}
	if len(senderB.messages) != 0 {
		t.Errorf("Notification leaked to another user's room")
	}
}
