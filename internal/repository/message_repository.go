package repository

import (
	"context"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

// MessageRepository stores direct messages. Threads come back oldest first,
// ties by id.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	Between(ctx context.Context, userID, otherID int) ([]*domain.Message, error)
	// MarkRead flags every unread message from senderID to receiverID.
	MarkRead(ctx context.Context, receiverID, senderID int) error
	// LatestPerPartner returns the newest message of each thread userID
	// takes part in, newest thread first.
	LatestPerPartner(ctx context.Context, userID int) ([]*domain.Message, error)
}
