package state

import (
	"errors"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/transport"
)

var (
	ErrSessionExists   = errors.New("session is already registered")
	ErrSessionNotFound = errors.New("session not found")
)

// Manager is the room registry: it owns the mapping between live sessions
// and the rooms they have joined. Join, Leave and TeardownSession are the
// only operations that mutate membership, and each is atomic with respect
// to RoomPeers snapshots.
type Manager interface {
	// --- Session Lifecycle ---
	RegisterSession(sender transport.Sender, identity Identity, ipAddr string) (*Session, error)
	// TeardownSession removes the session from every room it joined and
	// returns the names of those rooms. After it returns, no peer snapshot
	// can include the session. Idempotent.
	TeardownSession(sessionID uuid.UUID) ([]string, error)
	GetSession(sessionID uuid.UUID) (*Session, bool)
	Sessions() []*Session

	// --- Per-user indexing (connection limiting) ---
	CountUserSessions(userID string) int
	FindOldestUserSession(userID string) (*Session, bool)

	// --- Room Membership ---
	// Join adds the session to the room, creating the room on first join.
	// Joining a room the session is already in is a no-op.
	Join(sessionID uuid.UUID, roomName string) error
	// Leave removes the session from the room. Leaving a room the session
	// never joined is a no-op.
	Leave(sessionID uuid.UUID, roomName string) error
	InRoom(sessionID uuid.UUID, roomName string) bool
	// RoomPeers snapshots the senders of every member of the room except
	// the excluded session. A nil uuid excludes nobody.
	RoomPeers(roomName string, exclude uuid.UUID) []transport.Sender
	// RoomMembers snapshots the identities currently joined to the room.
	RoomMembers(roomName string) []Identity
}
