package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/transport"
)

// Identity is the public fragment of a user resolved at connection
// admission. It is owned by the session for its lifetime and never mutated
// by the realtime layer.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Session is the live, authenticated handle for one transport connection.
// It exists only in process memory and dies with the connection.
type Session struct {
	ID        uuid.UUID
	Identity  Identity
	Transport transport.Sender
	IPAddress string
	CreatedAt time.Time
}
