package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkovalyov/focusaid/internal/models"
)

func (m *Mongo) InsertTask(ctx context.Context, task *models.Task) error {
	if _, err := m.Tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListTasks returns tasks newest-first by created_at, capped at 100 documents.
func (m *Mongo) ListTasks(ctx context.Context) ([]models.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(listLimit)

	cursor, err := m.Tasks.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, listLimit)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a validated merge-patch to a single task. Only fields
// present in the patch are overwritten. NotFound keys off MatchedCount so
// that a no-op patch against an existing task still succeeds.
func (m *Mongo) UpdateTask(ctx context.Context, id string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		patch = map[string]interface{}{}
	}

	result, err := m.Tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patch})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) DeleteTask(ctx context.Context, id string) error {
	result, err := m.Tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
