/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package puzzle implements the phrase-guessing game: guess normalization,
// letter feedback, and per-visitor session state.
package puzzle

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Blank pads guesses that are shorter than the secret. Normalize strips it
// from input, so it can never equal a secret rune, spaces included.
const Blank = '\x00'

// Classification is the result for a single phrase position.
type Classification int

const (
	Absent Classification = iota
	Present
	Correct
)

func (c Classification) String() string {
	switch c {
	case Correct:
		return "correct"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

// Feedback holds one Classification per rune of the secret.
type Feedback []Classification

// Normalize drops Blank runes, collapses whitespace runs to a single space,
// trims the ends and lower-cases the result.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, string(Blank), "")

	// A Caser may carry state, so each call gets its own.
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(s), " "))
}

// Display renders a padded guess for people, showing Blank as a space.
func Display(guess string) string {
	return strings.ReplaceAll(guess, string(Blank), " ")
}

// Pad truncates or blank-pads guess to exactly n runes.
func Pad(guess string, n int) string {
	r := []rune(guess)
	if len(r) >= n {
		return string(r[:n])
	}

	out := make([]rune, n)
	copy(out, r)
	for i := len(r); i < n; i++ {
		out[i] = Blank
	}

	return string(out)
}

// ComputeFeedback classifies every position of guess against secret.
// Exact matches are claimed first so a repeated letter in the guess can
// never consume the same secret letter twice.
func ComputeFeedback(secret, guess string) Feedback {
	s := []rune(secret)
	g := []rune(Pad(guess, len(s)))

	fb := make(Feedback, len(s))
	used := make([]bool, len(s))

	for i := range s {
		if g[i] != Blank && g[i] == s[i] {
			fb[i] = Correct
			used[i] = true
		}
	}

	for i := range s {
		if fb[i] != Absent || g[i] == Blank {
			continue
		}
		for j := range s {
			if !used[j] && s[j] == g[i] {
				fb[i] = Present
				used[j] = true
				break
			}
		}
	}

	return fb
}
