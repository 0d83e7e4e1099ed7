package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

var errNoRecipient = errors.New("email: no recipient")

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	now    func() time.Time
}

// NewResendSender creates a ResendSender.
// PRE: apiKey is a Resend API key; from is the default sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		now:    time.Now,
	}
}

// Send hands one mail to Resend.
// PRE: req has at least one recipient
// POST: The mail is queued; the Resend message id is returned
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, errNoRecipient
	}
	params := s.params(req)
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend_send_failed", "error", err.Error(), "category", req.Category, "recipients", len(req.To))
		return SendResult{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "category", req.Category, "recipients", len(req.To))
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if p.From == "" {
		p.From = s.from
	}
	if req.Category != "" {
		p.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}
	return p
}
