package models

import "time"

type Task struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description *string    `bson:"description,omitempty" json:"description,omitempty"`
	Completed   bool       `bson:"completed" json:"completed"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}
