package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type messageRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewMessageRepository(db *sqlx.DB, timeout time.Duration) repository.MessageRepository {
	return &messageRepository{db: db, timeout: timeout}
}

func (r *messageRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, read, created_at
	`
	err := r.db.QueryRowContext(ctx, query, message.SenderID, message.ReceiverID, message.Content).
		Scan(&message.ID, &message.Read, &message.CreatedAt)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return domain.ErrProfileNotFound
		}
		return classify("create message", err)
	}
	return nil
}

func (r *messageRepository) Between(ctx context.Context, userID, otherID int) ([]*domain.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, sender_id, receiver_id, content, read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, id
	`
	messages := []*domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, userID, otherID); err != nil {
		return nil, classify("list messages", err)
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, receiverID, senderID int) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE messages
		SET read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT read
	`
	if _, err := r.db.ExecContext(ctx, query, receiverID, senderID); err != nil {
		return classify("mark messages read", err)
	}
	return nil
}

func (r *messageRepository) LatestPerPartner(ctx context.Context, userID int) ([]*domain.Message, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT DISTINCT ON (partner_id) id, sender_id, receiver_id, content, read, created_at
		FROM (
			SELECT m.*,
			       CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS partner_id
			FROM messages m
			WHERE m.sender_id = $1 OR m.receiver_id = $1
		) thread
		ORDER BY partner_id, created_at DESC, id DESC
	`
	messages := []*domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, classify("list conversations", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return messages[i].ID > messages[j].ID
	})
	return messages, nil
}
