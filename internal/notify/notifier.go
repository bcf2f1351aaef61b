package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Message is an operator notification about a contact submission.
type Message struct {
	ContactID   int       `json:"contact_id"`
	Subject     string    `json:"subject"`
	ReplyTo     string    `json:"reply_to"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Notifier delivers a message to the operator.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for i, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Noop drops messages. It is used when no sink is configured.
type Noop struct {
	Logger zerolog.Logger
}

func (n Noop) Notify(_ context.Context, msg Message) error {
	n.Logger.Debug().Int("contact_id", msg.ContactID).Msg("notifications disabled, dropping message")
	return nil
}
