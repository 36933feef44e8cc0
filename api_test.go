/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/invitebox/mail"
	"github.com/Seednode/invitebox/rsvp"
	"github.com/Seednode/invitebox/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, []byte) error {
	return errors.New("write failed")
}

func testConfig(t *testing.T, logs *bytes.Buffer) *Config {
	t.Helper()

	cfg := &Config{
		celebration:    10 * time.Millisecond,
		maxAttempts:    8,
		port:           8080,
		secret:         "staub",
		sessionTimeout: time.Minute,
		siteName:       "invitebox",
		store:          "bolt",
		logger:         zerolog.Nop(),
	}
	if logs != nil {
		cfg.logger = zerolog.New(logs)
	}

	return cfg
}

func newTestRouter(t *testing.T, cfg *Config, st rsvp.Store, m rsvp.Mailer) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := rsvp.NewService(st, m, "invites@example.com", []string{"host@example.com"})

	return newRouter(ctx, cfg, svc)
}

func openBolt(t *testing.T) *store.Bolt {
	t.Helper()

	db, err := store.OpenBolt(filepath.Join(t.TempDir(), "rsvp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

func TestAPIName(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"name": "invitebox"}, decodeBody(t, rec))
}

func TestRSVPSuccess(t *testing.T) {
	db := openBolt(t)
	m := &recordingMailer{}
	h := newTestRouter(t, testConfig(t, nil), db, m)

	body := `{"name":"Ada Lovelace","email":"ada@example.com","message":"Can't wait"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, rsvp.MessageReceived, out["message"])
	assert.Equal(t, true, out["notified"])

	keys, err := db.Keys(context.Background(), rsvp.KeyPrefix)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	raw, err := db.Get(context.Background(), keys[0])
	require.NoError(t, err)

	var stored rsvp.Record
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, keys[0], stored.ID)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, "Can't wait", stored.Message)
	assert.Equal(t, rsvp.NotProvided, stored.Phone)

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].HTML, "<strong>Phone:</strong> Not provided")
}

func TestRSVPStorageFailure(t *testing.T) {
	var logs bytes.Buffer
	m := &recordingMailer{}
	h := newTestRouter(t, testConfig(t, &logs), brokenStore{}, m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(`{"name":"Ada"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, rsvp.MessageFailed, out["message"])
	assert.Equal(t, string(rsvp.ReasonStorage), out["reason"])

	assert.Empty(t, m.sent)
	assert.Equal(t, 1, strings.Count(logs.String(), "failed to process submission"))
}

func TestRSVPMalformedPayload(t *testing.T) {
	db := openBolt(t)
	h := newTestRouter(t, testConfig(t, nil), db, &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(`not json`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(rsvp.ReasonPayload), decodeBody(t, rec)["reason"])

	keys, err := db.Keys(context.Background(), rsvp.KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRSVPNotificationFailureStillSucceeds(t *testing.T) {
	var logs bytes.Buffer
	db := openBolt(t)
	h := newTestRouter(t, testConfig(t, &logs), db, &recordingMailer{err: errors.New("smtp down")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(`{"name":"Ada"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, false, out["notified"])

	keys, err := db.Keys(context.Background(), rsvp.KeyPrefix)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.Equal(t, 1, strings.Count(logs.String(), "notification failed"))
}

func TestVisited(t *testing.T) {
	m := &recordingMailer{}
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jp-visited", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, decodeBody(t, rec))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Someone visited the jp page", m.sent[0].Subject)
}

func TestVisitedFailure(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{err: errors.New("nope")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/home-visited", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"success": false}, decodeBody(t, rec))
}

func TestUnknownAction(t *testing.T) {
	m := &recordingMailer{}
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), m)

	for _, path := range []string{"/api/unknown", "/api/-visited", "/api/Bad_Page-visited"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	assert.Empty(t, m.sent)
}

func TestHomePageSetsVisitorCookie(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "guessForm")

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == visitorCookieName {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssets(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/puzzle.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/../main.go", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestQRCode(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestRouter(t, testConfig(t, nil), openBolt(t), &recordingMailer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "Ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, "invitebox v"+releaseVersion+"\n", rec.Body.String())
}
