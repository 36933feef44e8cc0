/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package rsvp accepts RSVP submissions, persists them and notifies the hosts.
package rsvp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// KeyPrefix starts every stored RSVP key.
const KeyPrefix = "rsvp_"

// Payload is the body of an RSVP submission. Only Name is expected to be set.
type Payload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Accommodation string `json:"accommodation,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Record is a persisted submission.
type Record struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Accommodation string    `json:"accommodation"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store persists records under a key. Implementations live in package store.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
}

// ErrTrailingData is returned when a payload is followed by anything but whitespace.
var ErrTrailingData = errors.New("unexpected data after payload")

// DecodePayload reads exactly one JSON payload from r.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload

	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Payload{}, fmt.Errorf("decode payload: %w", ErrTrailingData)
	}

	return p, nil
}

// NewKey returns a key of the form rsvp_<unix millis>_<8 hex chars>.
func NewKey(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	return KeyPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + hex.EncodeToString(buf), nil
}

// newRecord stamps p with its key and time. Empty optional fields are stored
// as NotProvided.
func newRecord(p Payload, id string, now time.Time) Record {
	return Record{
		ID:            id,
		Name:          p.Name,
		Email:         orNotProvided(p.Email),
		Phone:         orNotProvided(p.Phone),
		Accommodation: orNotProvided(p.Accommodation),
		Message:       orNotProvided(p.Message),
		Timestamp:     now.UTC(),
	}
}
