package statemanager

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/transport"
)

// InMemoryManager keeps the whole registry under a single mutex. Membership
// mutation and peer enumeration never interleave, so a broadcast snapshot
// taken after teardown began can never contain the departing session.
type InMemoryManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
	rooms    map[string]map[uuid.UUID]*sessionEntry
	byUser   map[string]map[uuid.UUID]*sessionEntry

	logger *slog.Logger
}

type sessionEntry struct {
	session *state.Session
	rooms   map[string]struct{}
}

func NewInMemoryManager(logger *slog.Logger) *InMemoryManager {
	return &InMemoryManager{
		sessions: make(map[uuid.UUID]*sessionEntry),
		rooms:    make(map[string]map[uuid.UUID]*sessionEntry),
		byUser:   make(map[string]map[uuid.UUID]*sessionEntry),
		logger:   logger.With(slog.String("component", "state_manager_inmemory")),
	}
}

// compile-time check to ensure InMemoryManager implements Manager.
var _ state.Manager = (*InMemoryManager)(nil)

func (m *InMemoryManager) RegisterSession(sender transport.Sender, identity state.Identity, ipAddr string) (*state.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := sender.ID()
	if _, exists := m.sessions[id]; exists {
		return nil, state.ErrSessionExists
	}

	sess := &state.Session{
		ID:        id,
		Identity:  identity,
		Transport: sender,
		IPAddress: ipAddr,
		CreatedAt: time.Now(),
	}
	entry := &sessionEntry{session: sess, rooms: make(map[string]struct{})}
	m.sessions[id] = entry

	userSessions, ok := m.byUser[identity.ID]
	if !ok {
		userSessions = make(map[uuid.UUID]*sessionEntry)
		m.byUser[identity.ID] = userSessions
	}
	userSessions[id] = entry

	m.logger.Debug("Session registered",
		slog.String("sessionID", id.String()),
		slog.String("userID", identity.ID),
	)
	return sess, nil
}

func (m *InMemoryManager) TeardownSession(sessionID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		// already torn down
		return nil, nil
	}
	delete(m.sessions, sessionID)

	userID := entry.session.Identity.ID
	if userSessions, ok := m.byUser[userID]; ok {
		delete(userSessions, sessionID)
		if len(userSessions) == 0 {
			delete(m.byUser, userID)
		}
	}

	left := make([]string, 0, len(entry.rooms))
	for roomName := range entry.rooms {
		left = append(left, roomName)
		m.removeFromRoomLocked(sessionID, roomName)
	}
	entry.rooms = make(map[string]struct{})
	sort.Strings(left)

	m.logger.Debug("Session torn down",
		slog.String("sessionID", sessionID.String()),
		slog.Int("roomsLeft", len(left)),
	)
	return left, nil
}

func (m *InMemoryManager) GetSession(sessionID uuid.UUID) (*state.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

func (m *InMemoryManager) Sessions() []*state.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*state.Session, 0, len(m.sessions))
	for _, entry := range m.sessions {
		out = append(out, entry.session)
	}
	return out
}

func (m *InMemoryManager) CountUserSessions(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser[userID])
}

func (m *InMemoryManager) FindOldestUserSession(userID string) (*state.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var oldest *state.Session
	for _, entry := range m.byUser[userID] {
		if oldest == nil || entry.session.CreatedAt.Before(oldest.CreatedAt) {
			oldest = entry.session
		}
	}
	if oldest == nil {
		return nil, false
	}
	return oldest, true
}

func (m *InMemoryManager) Join(sessionID uuid.UUID, roomName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return state.ErrSessionNotFound
	}
	if _, joined := entry.rooms[roomName]; joined {
		return nil
	}

	members, ok := m.rooms[roomName]
	if !ok {
		members = make(map[uuid.UUID]*sessionEntry)
		m.rooms[roomName] = members
	}
	members[sessionID] = entry
	entry.rooms[roomName] = struct{}{}

	m.logger.Debug("Session joined room",
		slog.String("sessionID", sessionID.String()),
		slog.String("room", roomName),
	)
	return nil
}

func (m *InMemoryManager) Leave(sessionID uuid.UUID, roomName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return state.ErrSessionNotFound
	}
	if _, joined := entry.rooms[roomName]; !joined {
		return nil
	}
	delete(entry.rooms, roomName)
	m.removeFromRoomLocked(sessionID, roomName)

	m.logger.Debug("Session left room",
		slog.String("sessionID", sessionID.String()),
		slog.String("room", roomName),
	)
	return nil
}

func (m *InMemoryManager) InRoom(sessionID uuid.UUID, roomName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	_, joined := entry.rooms[roomName]
	return joined
}

func (m *InMemoryManager) RoomPeers(roomName string, exclude uuid.UUID) []transport.Sender {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.rooms[roomName]
	out := make([]transport.Sender, 0, len(members))
	for id, entry := range members {
		if id == exclude {
			continue
		}
		out = append(out, entry.session.Transport)
	}
	return out
}

func (m *InMemoryManager) RoomMembers(roomName string) []state.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.rooms[roomName]
	seen := make(map[string]struct{}, len(members))
	out := make([]state.Identity, 0, len(members))
	for _, entry := range members {
		// A user with several sessions in the room appears once.
		if _, dup := seen[entry.session.Identity.ID]; dup {
			continue
		}
		seen[entry.session.Identity.ID] = struct{}{}
		out = append(out, entry.session.Identity)
	}
	return out
}

// removeFromRoomLocked unlinks the session from the room and garbage
// collects the room when it empties. Caller holds m.mu.
func (m *InMemoryManager) removeFromRoomLocked(sessionID uuid.UUID, roomName string) {
	members, ok := m.rooms[roomName]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(m.rooms, roomName)
		m.logger.Debug("Removed empty room", slog.String("room", roomName))
	}
}
