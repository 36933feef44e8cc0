/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rsvp

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// NotProvided stands in for optional fields left empty.
const NotProvided = "Not provided"

var rsvpTemplate = template.Must(template.New("rsvp").Parse(`<h2>New RSVP received</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Accommodation:</strong> {{.Accommodation}}</p>
<p><strong>Message:</strong> {{.Message}}</p>
<p><strong>Submitted:</strong> {{.Submitted}}</p>
<p><small>Reference: {{.ID}}</small></p>
`))

var visitTemplate = template.Must(template.New("visit").Parse(`<h2>Page visited</h2>
<p>Someone just opened the <strong>{{.Page}}</strong> page.</p>
<p><strong>Time:</strong> {{.Time}}</p>
`))

func orNotProvided(s string) string {
	if s == "" {
		return NotProvided
	}
	return s
}

func rsvpSubject(r Record) string {
	return fmt.Sprintf("New RSVP from %s", orNotProvided(r.Name))
}

func renderRSVP(r Record) (string, error) {
	var buf bytes.Buffer

	err := rsvpTemplate.Execute(&buf, struct {
		ID, Name, Email, Phone, Accommodation, Message, Submitted string
	}{
		ID:            r.ID,
		Name:          orNotProvided(r.Name),
		Email:         orNotProvided(r.Email),
		Phone:         orNotProvided(r.Phone),
		Accommodation: orNotProvided(r.Accommodation),
		Message:       orNotProvided(r.Message),
		Submitted:     r.Timestamp.Format(time.RFC1123),
	})
	if err != nil {
		return "", fmt.Errorf("render rsvp email: %w", err)
	}

	return buf.String(), nil
}

func renderVisit(page string, at time.Time) (string, error) {
	var buf bytes.Buffer

	err := visitTemplate.Execute(&buf, struct{ Page, Time string }{
		Page: page,
		Time: at.Format(time.RFC1123),
	})
	if err != nil {
		return "", fmt.Errorf("render visit email: %w", err)
	}

	return buf.String(), nil
}
