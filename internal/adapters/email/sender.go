// Package email delivers administrator alerts through an external provider.
package email

import (
	"context"
	"time"
)

// Message is one outgoing alert.
type Message struct {
	To      []string
	From    string // optional; the sender's default is used when empty
	Subject string
	HTML    string
	Text    string
}

// Receipt records the provider's acceptance of a message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
