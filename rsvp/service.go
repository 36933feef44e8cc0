/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rsvp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Seednode/invitebox/mail"
)

const (
	MessageReceived = "RSVP received successfully!"
	MessageFailed   = "Failed to process RSVP"
)

// Reason says which step of a submission failed.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonPayload      Reason = "payload"
	ReasonStorage      Reason = "storage"
	ReasonNotification Reason = "notification"
)

// Result is the outcome of Submit or Visited.
//
// A submission whose record was stored but whose notification failed is
// still OK; Reason is then ReasonNotification and Notified is false.
type Result struct {
	OK       bool
	Reason   Reason
	Message  string
	ID       string
	Notified bool
	Err      error
}

func failed(reason Reason, err error) Result {
	return Result{
		Reason:  reason,
		Message: MessageFailed,
		Err:     err,
	}
}

// Mailer delivers a notification email.
type Mailer interface {
	Send(ctx context.Context, m mail.Message) error
}

type Service struct {
	store  Store
	mailer Mailer
	from   string
	to     []string
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, mailer Mailer, from string, to []string, opts ...Option) *Service {
	s := &Service{
		store:  store,
		mailer: mailer,
		from:   from,
		to:     to,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SubmitJSON decodes a JSON payload from r and submits it.
func (s *Service) SubmitJSON(ctx context.Context, r io.Reader) Result {
	p, err := DecodePayload(r)
	if err != nil {
		return failed(ReasonPayload, err)
	}

	return s.Submit(ctx, p)
}

// Submit stores the payload and then notifies the hosts. Nothing is retried
// and a stored record is kept even if the notification fails.
func (s *Service) Submit(ctx context.Context, p Payload) Result {
	now := s.now()

	key, err := NewKey(now)
	if err != nil {
		return failed(ReasonStorage, err)
	}

	rec := newRecord(p, key, now)

	value, err := json.Marshal(rec)
	if err != nil {
		return failed(ReasonStorage, fmt.Errorf("marshal record: %w", err))
	}

	if err := s.store.Put(ctx, key, value); err != nil {
		return failed(ReasonStorage, fmt.Errorf("put record: %w", err))
	}

	res := Result{
		OK:       true,
		Message:  MessageReceived,
		ID:       key,
		Notified: true,
	}

	if err := s.notify(ctx, rec); err != nil {
		res.Reason = ReasonNotification
		res.Notified = false
		res.Err = err
	}

	return res
}

func (s *Service) notify(ctx context.Context, rec Record) error {
	body, err := renderRSVP(rec)
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      s.to,
		Subject: rsvpSubject(rec),
		HTML:    body,
	})
}

// Visited sends the fixed "page visited" notification for page.
func (s *Service) Visited(ctx context.Context, page string) Result {
	body, err := renderVisit(page, s.now())
	if err != nil {
		return Result{Reason: ReasonNotification, Err: err}
	}

	err = s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      s.to,
		Subject: fmt.Sprintf("Someone visited the %s page", page),
		HTML:    body,
	})
	if err != nil {
		return Result{Reason: ReasonNotification, Err: err}
	}

	return Result{OK: true, Notified: true}
}
