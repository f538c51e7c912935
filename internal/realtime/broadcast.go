package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// Broadcaster is the fanout primitive. Delivery is best-effort and
// at-most-once per connected peer: the message is marshalled once and queued
// on each peer's ordered send channel, with no buffering or retry for peers
// that are gone.
type Broadcaster struct {
	logger *slog.Logger
	state  state.Manager
}

func NewBroadcaster(logger *slog.Logger, stateManager state.Manager) *Broadcaster {
	return &Broadcaster{
		logger: logger.With(slog.String("component", "broadcaster")),
		state:  stateManager,
	}
}

// ToRoom delivers msg to every session in the room except the excluded one.
// Excluding the sender is a parameter here rather than per-handler logic.
// Passing uuid.Nil excludes nobody. Returns the number of peers targeted.
func (b *Broadcaster) ToRoom(roomName string, msg ServerMessage, exclude uuid.UUID) int {
	raw, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("Failed to marshal outbound message",
			slog.String("event", msg.Event),
			slog.Any("error", err),
		)
		return 0
	}

	peers := b.state.RoomPeers(roomName, exclude)
	for _, peer := range peers {
		peer.Send(raw)
	}
	b.logger.Debug("Broadcast to room",
		slog.String("room", roomName),
		slog.String("event", msg.Event),
		slog.Int("peers", len(peers)),
	)
	return len(peers)
}

// ToUser delivers msg to every live session of the given user, reaching a
// user across all their tabs without an explicit room join.
func (b *Broadcaster) ToUser(userID string, msg ServerMessage) int {
	return b.ToRoom(UserRoom(userID), msg, uuid.Nil)
}
