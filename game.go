/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Puzzle transport
//
// Every visitor gets a cookie and a server-side puzzle.Session keyed by it.
// The browser talks to its session over a websocket:
//
//   - {"type":"guess","guess":"..."} scores a guess and pushes the new state
//   - {"type":"reset"} clears the attempts
//
// On a win the server sends "celebrate", waits for the celebration to play,
// then sends "complete". On a loss "complete" follows the state immediately,
// and a visitor reconnecting to a finished game gets "complete" right after
// the initial state.
// Sessions idle for longer than --session-timeout are discarded.

package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/invitebox/puzzle"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // "guess", "reset"
	Guess string `json:"guess,omitempty"` // guess
}

// StateMessage carries the full puzzle state after every change.
type StateMessage struct {
	Type string `json:"type"` // "state"
	puzzle.State
}

// ErrorMessage is sent to the client whose input was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// CelebrateMessage asks the client to start the win effect.
type CelebrateMessage struct {
	Type       string `json:"type"` // "celebrate"
	DurationMS int64  `json:"duration_ms"`
}

// CompleteMessage reveals the completion panel.
type CompleteMessage struct {
	Type string `json:"type"` // "complete"
	puzzle.Completion
}

type visitor struct {
	mu         sync.Mutex
	session    *puzzle.Session
	lastActive time.Time
}

// do runs fn with exclusive access to the visitor's session.
func (v *visitor) do(fn func(s *puzzle.Session)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastActive = time.Now()
	fn(v.session)
}

// SessionManager holds one puzzle session per visitor ID.
type SessionManager struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	secret      string
	maxAttempts int
	idleTimeout time.Duration
}

func newSessionManager(secret string, maxAttempts int, idleTimeout time.Duration) *SessionManager {
	return &SessionManager{
		visitors:    make(map[string]*visitor),
		secret:      secret,
		maxAttempts: maxAttempts,
		idleTimeout: idleTimeout,
	}
}

func (sm *SessionManager) get(id string) *visitor {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if v, ok := sm.visitors[id]; ok {
		return v
	}

	v := &visitor{
		session:    puzzle.NewSession(sm.secret, sm.maxAttempts),
		lastActive: time.Now(),
	}
	sm.visitors[id] = v

	return v
}

func (sm *SessionManager) count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return len(sm.visitors)
}

// reap removes sessions that have been idle since before cutoff.
func (sm *SessionManager) reap(cutoff time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id, v := range sm.visitors {
		v.mu.Lock()
		last := v.lastActive
		v.mu.Unlock()

		if last.Before(cutoff) {
			delete(sm.visitors, id)
			removed++
		}
	}

	return removed
}

// reaperLoop periodically removes idle sessions until ctx is done.
func (sm *SessionManager) reaperLoop(ctx context.Context, cfg *Config) {
	if sm.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(sm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sm.reap(now.Add(-sm.idleTimeout)); n > 0 {
				logf(cfg, "PUZZLE: Reaped %d idle sessions, %d remaining", n, sm.count())
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const visitorCookieName = "invitebox_id"

func getOrSetVisitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

// push queues msg for the write pump, giving up once ctx is done.
func (c *Client) push(ctx context.Context, msg any) bool {
	select {
	case c.send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) writePump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// celebration plays the win effect on the client: it tells the browser to
// start and then waits out the duration.
func (c *Client) celebration() puzzle.Effect {
	return puzzle.EffectFunc(func(ctx context.Context, d time.Duration) error {
		if !c.push(ctx, CelebrateMessage{Type: "celebrate", DurationMS: d.Milliseconds()}) {
			return ctx.Err()
		}

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// handle applies one client message and replies on the client's queue.
func (c *Client) handle(ctx context.Context, cfg *Config, v *visitor, msg ClientMessage) {
	var (
		st  puzzle.State
		err error
	)

	switch msg.Type {
	case "guess":
		v.do(func(s *puzzle.Session) {
			_, err = s.Submit(msg.Guess)
			st = s.State()
		})
	case "reset":
		v.do(func(s *puzzle.Session) {
			s.Reset()
			st = s.State()
		})
	case "state":
		v.do(func(s *puzzle.Session) {
			st = s.State()
		})
	default:
		return
	}

	switch {
	case errors.Is(err, puzzle.ErrEmptyGuess):
		c.push(ctx, ErrorMessage{Type: "error", Message: "Please enter a guess."})
		return
	case errors.Is(err, puzzle.ErrGameOver):
		c.push(ctx, ErrorMessage{Type: "error", Message: "The game is over. Press reset to play again."})
		return
	}

	if !c.push(ctx, StateMessage{Type: "state", State: st}) {
		return
	}

	if st.Status == puzzle.StatusPlaying {
		return
	}

	fx := c.celebration()
	if msg.Type == "guess" {
		logf(cfg, "PUZZLE: Game %s after %d attempts", st.Status, len(st.Attempts))
	} else {
		// Reconnecting to a finished game shows the panel again without the effect.
		fx = puzzle.NoEffect
	}

	done, err := puzzle.Complete(ctx, st, fx, cfg.celebration)
	if err != nil {
		return
	}

	c.push(ctx, CompleteMessage{Type: "complete", Completion: done})
}

// WebSocket handler bound to the caller's visitor cookie
func serveWS(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := getOrSetVisitorID(w, r)
		v := sm.get(id)

		// The upgrade response is written by the websocket library, so any
		// freshly issued cookie has to be handed over explicitly.
		conn, err := upgrader.Upgrade(w, r, http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")})
		if err != nil {
			logf(cfg, "PUZZLE: Upgrade failed for %s: %v", realIP(r), err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		go client.writePump(cancel)

		client.handle(ctx, cfg, v, ClientMessage{Type: "state"})

		for {
			var msg ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}

			client.handle(ctx, cfg, v, msg)
		}

		close(client.send)
	}
}

func serveState(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		v := sm.get(getOrSetVisitorID(w, r))

		var st puzzle.State
		v.do(func(s *puzzle.Session) {
			st = s.State()
		})

		writeJSON(cfg, w, http.StatusOK, st)
	}
}

// QR handler: generates a PNG QR code pointing at the site root, for sharing the invitation.
func serveQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

// registerPuzzle sets up routes so that:
//   - $prefix/puzzle/ws     → WebSocket for the visitor's session
//   - $prefix/puzzle/state  → JSON snapshot of the visitor's session
//   - $prefix/qr            → PNG QR code for the site
func registerPuzzle(ctx context.Context, cfg *Config, mux *httprouter.Router) *SessionManager {
	sm := newSessionManager(cfg.secret, cfg.maxAttempts, cfg.sessionTimeout)
	go sm.reaperLoop(ctx, cfg)

	mux.GET(cfg.prefix+"/puzzle/ws", serveWS(cfg, sm))
	mux.GET(cfg.prefix+"/puzzle/state", serveState(cfg, sm))
	mux.GET(cfg.prefix+"/qr", serveQR(cfg))

	return sm
}
