package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/mkovalyov/focusaid/internal/models"
)

// ConversationStore is the slice of the document store the message exchange
// needs. *db.Mongo satisfies it.
type ConversationStore interface {
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	UpdateConversationMessages(ctx context.Context, id string, messages []models.Message, updatedAt time.Time) error
}

// Replier produces the assistant side of an exchange. *Resolver satisfies it.
type Replier interface {
	Resolve(ctx context.Context, history []models.Message) models.Message
}

// Service runs the conversation message-exchange workflow.
type Service struct {
	store    ConversationStore
	resolver Replier
	now      func() time.Time
}

func NewService(store ConversationStore, resolver Replier) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddMessage appends the user message to the stored conversation, obtains the
// assistant reply, appends it, and persists the full list with a refreshed
// updated_at in a single update. The read-append-write sequence is not
// atomic: concurrent calls on the same conversation race with last-write-wins
// on the stored list.
func (s *Service) AddMessage(ctx context.Context, conversationID, text string) (userMsg, aiMsg models.Message, err error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return models.Message{}, models.Message{}, err
	}

	userMsg = models.Message{Role: "user", Content: text}

	history := make([]models.Message, 0, len(conv.Messages)+2)
	history = append(history, conv.Messages...)
	history = append(history, userMsg)

	aiMsg = s.resolver.Resolve(ctx, history)
	history = append(history, aiMsg)

	if err := s.store.UpdateConversationMessages(ctx, conversationID, history, s.now()); err != nil {
		return models.Message{}, models.Message{}, fmt.Errorf("persist conversation %s: %w", conversationID, err)
	}

	return userMsg, aiMsg, nil
}
