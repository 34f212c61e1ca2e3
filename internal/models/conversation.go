package models

import "time"

// Message is a single chat turn. Role is either "user" or "assistant"; the
// external completion API additionally uses "system" and "tool", which pass
// through untouched.
type Message struct {
	Role    string `bson:"role" json:"role"`
	Content string `bson:"content" json:"content"`
}

// Conversation is an append-only message log. Messages is mutated only by the
// message-exchange workflow, which appends one user and one assistant entry
// per call; order is significant.
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Messages  []Message `bson:"messages" json:"messages"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
