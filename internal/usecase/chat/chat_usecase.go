package chat

import (
	"context"
	"fmt"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/gdugdh24/kindred-backend/internal/repository"
	"go.uber.org/zap"
)

// MatchChecker answers whether two profiles liked each other.
type MatchChecker interface {
	IsMatched(ctx context.Context, userID, otherID int) (bool, error)
}

type EventPublisher interface {
	PublishMessage(ctx context.Context, message domain.Message) error
}

type ChatUseCase struct {
	profileRepo repository.ProfileRepository
	messageRepo repository.MessageRepository
	matches     MatchChecker
	publisher   EventPublisher
	logger      *zap.Logger
}

func NewChatUseCase(
	profileRepo repository.ProfileRepository,
	messageRepo repository.MessageRepository,
	matches MatchChecker,
	publisher EventPublisher,
	logger *zap.Logger,
) *ChatUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatUseCase{
		profileRepo: profileRepo,
		messageRepo: messageRepo,
		matches:     matches,
		publisher:   publisher,
		logger:      logger,
	}
}

// SendMessageRequest is the body of POST /messages
type SendMessageRequest struct {
	ReceiverID int    `json:"receiver_id" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required"`
}

// SendMessage stores a message from senderID. Only matched profiles may
// write to each other.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID int, req *SendMessageRequest) (*domain.Message, error) {
	if senderID == req.ReceiverID {
		return nil, &domain.ValidationError{Reason: "cannot message own profile"}
	}
	content, err := domain.NormalizeMessageContent(req.Content)
	if err != nil {
		return nil, err
	}

	if _, err := uc.profileRepo.GetByID(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := uc.profileRepo.GetByID(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	matched, err := uc.matches.IsMatched(ctx, senderID, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotMatched
	}

	message := &domain.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishMessage(ctx, *message); err != nil {
			uc.logger.Error("publish message event failed",
				zap.Int("message_id", message.ID),
				zap.Int("receiver_id", message.ReceiverID),
				zap.Error(err),
			)
		}
	}

	return message, nil
}

// Thread returns the messages between userID and otherID, oldest first, and
// then marks the ones addressed to userID as read. The returned flags are the
// state before marking, so the caller can tell which messages are new.
func (uc *ChatUseCase) Thread(ctx context.Context, userID, otherID int) ([]*domain.Message, error) {
	if _, err := uc.profileRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.Between(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	if err := uc.messageRepo.MarkRead(ctx, userID, otherID); err != nil {
		return nil, fmt.Errorf("mark messages read: %w", err)
	}
	return messages, nil
}

// Conversations lists userID's threads, newest activity first. Threads whose
// partner no longer resolves are skipped.
func (uc *ChatUseCase) Conversations(ctx context.Context, userID int) ([]domain.Conversation, error) {
	if _, err := uc.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	latest, err := uc.messageRepo.LatestPerPartner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	ids := make([]int, 0, len(latest))
	for _, m := range latest {
		ids = append(ids, m.PartnerOf(userID))
	}
	profiles, err := repository.NewProfileLoader(uc.profileRepo).LoadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]domain.Conversation, 0, len(latest))
	for _, m := range latest {
		partner, ok := byID[m.PartnerOf(userID)]
		if !ok {
			continue
		}
		out = append(out, domain.Conversation{User: partner, LastMessage: m})
	}
	return out, nil
}
