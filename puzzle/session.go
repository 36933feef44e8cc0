/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzle

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxAttempts is the number of guesses a visitor gets per game.
const DefaultMaxAttempts = 8

var (
	ErrEmptyGuess     = errors.New("please enter a guess")
	ErrGameOver       = errors.New("game is over")
	ErrGameInProgress = errors.New("game is still in progress")
)

type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Attempt is one submitted guess, padded to the secret's length, and its feedback.
type Attempt struct {
	Guess    string   `json:"guess"`
	Feedback Feedback `json:"feedback"`
}

// State is a read-only snapshot of a session, safe to hand to a renderer.
type State struct {
	Length      int       `json:"length"`
	MaxAttempts int       `json:"max_attempts"`
	Attempts    []Attempt `json:"attempts"`
	Rows        []Attempt `json:"rows"`
	Aggregate   Feedback  `json:"aggregate"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Secret      string    `json:"secret,omitempty"`
}

// Session tracks the attempts of a single visitor. It is not safe for
// concurrent use.
type Session struct {
	secret      string
	length      int
	maxAttempts int
	attempts    []Attempt
	status      Status
	message     string
}

// NewSession starts a game for secret, which is normalized first.
// A non-positive maxAttempts falls back to DefaultMaxAttempts.
func NewSession(secret string, maxAttempts int) *Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	secret = Normalize(secret)

	s := &Session{
		secret:      secret,
		length:      utf8.RuneCountInString(secret),
		maxAttempts: maxAttempts,
	}
	s.Reset()

	return s
}

// Submit normalizes raw, scores it and records the attempt.
func (s *Session) Submit(raw string) (Attempt, error) {
	if s.status != StatusPlaying {
		return Attempt{}, ErrGameOver
	}

	val := Normalize(raw)
	if val == "" {
		return Attempt{}, ErrEmptyGuess
	}

	guess := Pad(val, s.length)
	a := Attempt{
		Guess:    guess,
		Feedback: ComputeFeedback(s.secret, guess),
	}
	s.attempts = append(s.attempts, a)
	a.Guess = Display(guess)

	switch {
	case guess == s.secret:
		s.status = StatusWon
		s.message = "Congratulations — you revealed the hidden phrase!"
	case len(s.attempts) >= s.maxAttempts:
		s.status = StatusLost
		s.message = fmt.Sprintf("Out of attempts. The phrase was: %q", s.secret)
	default:
		s.message = fmt.Sprintf("Attempt %d/%d", len(s.attempts), s.maxAttempts)
	}

	return a, nil
}

// Aggregate folds every attempt into the best classification seen per position.
func (s *Session) Aggregate() Feedback {
	agg := make(Feedback, s.length)

	for _, a := range s.attempts {
		for i, c := range a.Feedback {
			if c > agg[i] {
				agg[i] = c
			}
		}
	}

	return agg
}

// Rows returns exactly MaxAttempts rows: the attempts so far, then blanks.
func (s *Session) Rows() []Attempt {
	rows := make([]Attempt, s.maxAttempts)
	copy(rows, s.Attempts())

	for i := len(s.attempts); i < s.maxAttempts; i++ {
		rows[i] = Attempt{Guess: Display(Pad("", s.length))}
	}

	return rows
}

// Reset clears the history and re-enables guessing.
func (s *Session) Reset() {
	s.attempts = nil
	s.status = StatusPlaying
	s.message = fmt.Sprintf("You have %d attempts to reveal the phrase.", s.maxAttempts)
}

func (s *Session) Status() Status {
	return s.status
}

// Attempts returns a copy of the history with padding shown as spaces.
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	for i, a := range s.attempts {
		out[i] = Attempt{Guess: Display(a.Guess), Feedback: a.Feedback}
	}

	return out
}

func (s *Session) Secret() string {
	return s.secret
}

func (s *Session) State() State {
	st := State{
		Length:      s.length,
		MaxAttempts: s.maxAttempts,
		Attempts:    s.Attempts(),
		Rows:        s.Rows(),
		Aggregate:   s.Aggregate(),
		Status:      s.status,
		Message:     s.message,
	}

	if s.status != StatusPlaying {
		st.Secret = s.secret
	}

	return st
}
