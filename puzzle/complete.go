/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzle

import (
	"context"
	"time"
)

// DefaultCelebration is how long the win effect plays before the reveal.
const DefaultCelebration = 3 * time.Second

// Effect plays a completion effect for d and returns once it has finished.
type Effect interface {
	Play(ctx context.Context, d time.Duration) error
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(ctx context.Context, d time.Duration) error

func (f EffectFunc) Play(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// NoEffect finishes immediately.
var NoEffect Effect = EffectFunc(func(context.Context, time.Duration) error { return nil })

// Completion describes the panel shown once a game is over.
type Completion struct {
	Status    Status   `json:"status"`
	Secret    string   `json:"secret"`
	Revealed  Feedback `json:"revealed"`
	Celebrate bool     `json:"celebrate"`
}

// Complete finishes the game captured in st. A win plays fx for d before
// revealing every position; a loss reveals the secret immediately without
// the effect.
func Complete(ctx context.Context, st State, fx Effect, d time.Duration) (Completion, error) {
	c := Completion{
		Status: st.Status,
		Secret: st.Secret,
	}

	switch c.Status {
	case StatusWon:
		if fx == nil {
			fx = NoEffect
		}
		if err := fx.Play(ctx, d); err != nil {
			return Completion{}, err
		}

		c.Celebrate = true
		c.Revealed = make(Feedback, st.Length)
		for i := range c.Revealed {
			c.Revealed[i] = Correct
		}
	case StatusLost:
		c.Revealed = st.Aggregate
	default:
		return Completion{}, ErrGameInProgress
	}

	return c, nil
}
