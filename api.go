/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Seednode/invitebox/rsvp"
	"github.com/julienschmidt/httprouter"
)

const maxPayloadBytes = 64 << 10

var pageName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func serveAPIName(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, struct {
			Name string `json:"name"`
		}{cfg.siteName})
	}
}

// serveAPIAction dispatches POST /api/:action, since the router cannot mix
// the static rsvp route with the per-page "<page>-visited" routes.
func serveAPIAction(cfg *Config, svc *rsvp.Service) httprouter.Handle {
	rsvpHandler := serveRSVP(cfg, svc)
	visitHandler := serveVisited(cfg, svc)

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		action := p.ByName("action")

		switch {
		case action == "rsvp":
			rsvpHandler(w, r, p)
		case strings.HasSuffix(action, "-visited") && pageName.MatchString(strings.TrimSuffix(action, "-visited")):
			visitHandler(w, r, strings.TrimSuffix(action, "-visited"))
		default:
			writeJSON(cfg, w, http.StatusNotFound, envelope{Message: "Not found"})
		}
	}
}

func serveRSVP(cfg *Config, svc *rsvp.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		res := svc.SubmitJSON(r.Context(), http.MaxBytesReader(w, r.Body, maxPayloadBytes))

		if !res.OK {
			cfg.logger.Error().
				Err(res.Err).
				Str("reason", string(res.Reason)).
				Str("client", realIP(r)).
				Msg("RSVP: failed to process submission")

			writeJSON(cfg, w, http.StatusInternalServerError, envelope{
				Message: res.Message,
				Reason:  string(res.Reason),
			})

			return
		}

		if res.Reason == rsvp.ReasonNotification {
			cfg.logger.Warn().
				Err(res.Err).
				Str("id", res.ID).
				Msg("RSVP: stored but notification failed")
		}

		notified := res.Notified
		writeJSON(cfg, w, http.StatusOK, envelope{
			Success:  true,
			Message:  res.Message,
			Notified: &notified,
		})

		logf(cfg, "RSVP: Stored %s from %s in %s",
			res.ID,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveVisited(cfg *Config, svc *rsvp.Service) func(http.ResponseWriter, *http.Request, string) {
	return func(w http.ResponseWriter, r *http.Request, page string) {
		res := svc.Visited(r.Context(), page)

		if !res.OK {
			cfg.logger.Error().
				Err(res.Err).
				Str("page", page).
				Msg("VISIT: failed to send notification")

			writeJSON(cfg, w, http.StatusInternalServerError, envelope{})

			return
		}

		writeJSON(cfg, w, http.StatusOK, envelope{Success: true})

		logf(cfg, "VISIT: %s page opened by %s", page, realIP(r))
	}
}
