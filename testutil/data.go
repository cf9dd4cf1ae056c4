// Package testutil provides generic work items and data generators shared
// by tests and the benchmark command.
package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkItem is a generic unit of work with a unique identity, suitable for
// exactly-once assertions in concurrent tests.
type WorkItem struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWorkItem creates a work item with a fresh UUID and the given sequence
// number.
func NewWorkItem(seq int) WorkItem {
	return WorkItem{
		ID:        uuid.New().String(),
		Seq:       seq,
		Payload:   fmt.Sprintf("item-%d", seq),
		CreatedAt: time.Now(),
	}
}

// WorkItems generates n work items with sequence numbers 0..n-1.
func WorkItems(n int) []WorkItem {
	items := make([]WorkItem, n)
	for i := range items {
		items[i] = NewWorkItem(i)
	}
	return items
}

// UniqueKeys generates n distinct string keys.
func UniqueKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = uuid.New().String()
	}
	return keys
}

// SequentialKeys generates n deterministic keys with the given prefix.
func SequentialKeys(prefix string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return keys
}
