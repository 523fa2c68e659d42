// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package models

import "time"

// Notification is a message from one account to another.
type Notification struct {
	ID         string    `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"senderId"`
	ReceiverID int64     `db:"receiver_id" json:"receiverId"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
