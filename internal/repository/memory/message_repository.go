package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.Message
	nextID   int
	now      func() time.Time
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{nextID: 1, now: time.Now}
}

func (r *MessageRepository) Create(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = r.nextID
	r.nextID++
	message.Read = false
	message.CreatedAt = r.now().UTC()

	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *MessageRepository) Between(_ context.Context, userID, otherID int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Message, 0)
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MessageRepository) MarkRead(_ context.Context, receiverID, senderID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID {
			m.Read = true
		}
	}
	return nil
}

func (r *MessageRepository) LatestPerPartner(_ context.Context, userID int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[int]*domain.Message)
	for _, m := range r.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		partner := m.PartnerOf(userID)
		cur, ok := latest[partner]
		if !ok || newerMessage(m, cur) {
			latest[partner] = m
		}
	}

	out := make([]*domain.Message, 0, len(latest))
	for _, m := range latest {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return newerMessage(out[i], out[j]) })
	return out, nil
}

func newerMessage(a, b *domain.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
