// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// Routing keys (and queue names) for activity events.
const (
	ReviewPosted   = "review.posted"
	ProductClicked = "product.clicked"
)

// ActivityEvent is published after a review is stored or a click is
// counted.  It carries enough context for a consumer to log or aggregate
// the activity without querying the primary database.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  uint64    `json:"product_id"`
	UserID     uint64    `json:"user_id,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	Reviews    int       `json:"reviews,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Queues lists every queue the publisher and consumer declare.
func Queues() []string {
	return []string{ReviewPosted, ProductClicked}
}
