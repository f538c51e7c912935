package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, avatar, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Avatar, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, avatar, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, avatar, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
}

// ResolveIdentity implements auth.IdentityResolver: it confirms the user
// still exists and returns the public fragment presented to room peers.
func (s *Store) ResolveIdentity(ctx context.Context, userID string) (state.Identity, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return state.Identity{}, err
	}
	return state.Identity{ID: user.ID, Name: user.Name, Avatar: user.Avatar}, nil
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Avatar, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
