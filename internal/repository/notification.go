// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/edumesh/schoolhub/internal/models"
	"github.com/google/uuid"
)

// CreateNotification stores a message between two accounts.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, sender_id, receiver_id, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.SenderID, n.ReceiverID, n.Message, n.CreatedAt)
	return err
}

// ListNotificationsForReceiver returns a receiver's notifications, newest first.
func (r *Repository) ListNotificationsForReceiver(ctx context.Context, receiverID int64) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT * FROM notifications WHERE receiver_id = ? ORDER BY created_at DESC`, receiverID)
	return notifications, err
}
