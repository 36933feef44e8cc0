/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendRejectsIncompleteMessages(t *testing.T) {
	r := NewResend("re_test")

	err := r.Send(context.Background(), Message{From: "a@example.com", Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	err = r.Send(context.Background(), Message{To: []string{"b@example.com"}, Subject: "hi"})
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(zerolog.New(&buf))

	msg := Message{
		From:    "invites@example.com",
		To:      []string{"host@example.com"},
		Subject: "New RSVP from Ada",
		HTML:    "<p>hello</p>",
	}
	require.NoError(t, l.Send(context.Background(), msg))
	assert.Contains(t, buf.String(), `"subject":"New RSVP from Ada"`)
	assert.Contains(t, buf.String(), `"component":"mail"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Send(ctx, msg), context.Canceled)
}
