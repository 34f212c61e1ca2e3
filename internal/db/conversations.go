package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkovalyov/focusaid/internal/models"
)

func (m *Mongo) InsertConversation(ctx context.Context, conv *models.Conversation) error {
	if _, err := m.Conversations.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// ListConversations returns conversations newest-first by updated_at, capped
// at 100 documents.
func (m *Mongo) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(listLimit)

	cursor, err := m.Conversations.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	conversations := make([]models.Conversation, 0, listLimit)
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}

	return conversations, nil
}

func (m *Mongo) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := m.Conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

// UpdateConversationMessages replaces the stored message list and refreshes
// updated_at in a single document update.
func (m *Mongo) UpdateConversationMessages(ctx context.Context, id string, messages []models.Message, updatedAt time.Time) error {
	result, err := m.Conversations.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"messages":   messages,
			"updated_at": updatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update conversation messages: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteConversation(ctx context.Context, id string) error {
	result, err := m.Conversations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
