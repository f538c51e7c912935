package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateInvitation(ctx context.Context, projectID, inviterID, inviteeID string) (*Invitation, error) {
	inv := &Invitation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    InvitationPending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (id, project_id, inviter_id, invitee_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ProjectID, inv.InviterID, inv.InviteeID, inv.Status, inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

func (s *Store) GetInvitation(ctx context.Context, id string) (*Invitation, error) {
	var inv Invitation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, inviter_id, invitee_id, status, created_at, responded_at
		 FROM invitations WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.RespondedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}
	return &inv, nil
}

// RespondInvitation records the invitee's decision. Accepting also enrolls
// the invitee as a project member, in the same transaction, so a crash
// between the two writes cannot leave an accepted invitation without a
// membership row.
func (s *Store) RespondInvitation(ctx context.Context, id string, accept bool) (*Invitation, error) {
	inv, err := s.GetInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvitationPending {
		return nil, fmt.Errorf("invitation %s already responded: %s", id, inv.Status)
	}

	status := InvitationDeclined
	if accept {
		status = InvitationAccepted
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE invitations SET status = ?, responded_at = ? WHERE id = ?`,
		status, now, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	if accept {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO project_members (project_id, user_id, role) VALUES (?, ?, 'member')`,
			inv.ProjectID, inv.InviteeID,
		); err != nil {
			return nil, fmt.Errorf("failed to enroll invitee: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation response: %w", err)
	}

	inv.Status = status
	inv.RespondedAt = &now
	return inv, nil
}
