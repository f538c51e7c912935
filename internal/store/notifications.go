package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateNotification(ctx context.Context, userID, kind string, body any) (*Notification, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification body: %w", err)
	}
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Body:      raw,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Kind, string(n.Body), n.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, kind, body, read, created_at FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var n Notification
		var body string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Body = json.RawMessage(body)
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag; scoped to the owner so one user
// cannot touch another's notifications.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
