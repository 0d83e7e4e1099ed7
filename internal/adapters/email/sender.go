package email

import (
	"context"
	"time"
)

// CategoryInvitation tags welcome mails for newly registered users.
const CategoryInvitation = "invitation"

// SendRequest is one outgoing mail.
type SendRequest struct {
	To       []string
	From     string // falls back to the sender's default when empty
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string // plain-text alternative, optional
	Category string // provider tag used to group deliveries, optional
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers mail through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
