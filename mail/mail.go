/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package mail delivers notification emails.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

var ErrNoRecipients = errors.New("no recipients configured")

// Message is a single HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if m.From == "" {
		return errors.New("sender is required")
	}
	return nil
}

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	client *resend.Client
}

func NewResend(apiKey string) *Resend {
	return &Resend{client: resend.NewClient(apiKey)}
}

func (r *Resend) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}

	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.From,
		To:      m.To,
		Subject: m.Subject,
		Html:    m.HTML,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

// Log writes messages to a logger instead of delivering them. It is used
// when no API key has been configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "mail").Logger()}
}

func (l *Log) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.log.Info().
		Str("from", m.From).
		Strs("to", m.To).
		Str("subject", m.Subject).
		Int("bytes", len(m.HTML)).
		Msg("email not delivered, no api key configured")

	return nil
}
