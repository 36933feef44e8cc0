/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/invitebox/puzzle"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	celebration    time.Duration
	dbPath         string
	mailFrom       string
	mailTo         []string
	maxAttempts    int
	port           int
	prefix         string
	profile        bool
	resendKey      string
	secret         string
	sessionTimeout time.Duration
	siteName       string
	store          string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	logger zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if puzzle.Normalize(c.secret) == "" {
		return errors.New("--secret must contain at least one non-space character")
	}
	if c.maxAttempts < 1 {
		return fmt.Errorf("invalid max attempts (must be at least 1): %d", c.maxAttempts)
	}
	if c.celebration < 0 {
		return fmt.Errorf("invalid celebration duration: %s", c.celebration)
	}
	switch c.store {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("invalid store (must be bolt or sqlite): %q", c.store)
	}
	if c.resendKey != "" && len(c.mailTo) == 0 {
		return errors.New("--mail-to is required when --resend-api-key is set")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("INVITEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "invitebox",
		Short:         "A small event website with an RSVP form and a phrase-guessing puzzle.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.logger = newLogger(cfg)
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: INVITEBOX_BIND)")
	fs.DurationVar(&cfg.celebration, "celebration", puzzle.DefaultCelebration, "how long the win effect plays before the reveal (env: INVITEBOX_CELEBRATION)")
	fs.StringVar(&cfg.dbPath, "db", "invitebox.db", "path to the rsvp database (env: INVITEBOX_DB)")
	fs.StringVar(&cfg.mailFrom, "mail-from", "invitebox <onboarding@resend.dev>", "sender address for notification emails (env: INVITEBOX_MAIL_FROM)")
	fs.StringSliceVar(&cfg.mailTo, "mail-to", nil, "recipient(s) of notification emails (env: INVITEBOX_MAIL_TO)")
	fs.IntVar(&cfg.maxAttempts, "max-attempts", puzzle.DefaultMaxAttempts, "guesses allowed per puzzle (env: INVITEBOX_MAX_ATTEMPTS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: INVITEBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: INVITEBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: INVITEBOX_PROFILE)")
	fs.StringVar(&cfg.resendKey, "resend-api-key", "", "resend api key; emails are only logged when unset (env: INVITEBOX_RESEND_API_KEY)")
	fs.StringVar(&cfg.secret, "secret", "staub", "hidden phrase for the puzzle (env: INVITEBOX_SECRET)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle puzzle sessions are discarded (env: INVITEBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.siteName, "site-name", "invitebox", "name reported by GET /api/ (env: INVITEBOX_SITE_NAME)")
	fs.StringVar(&cfg.store, "store", "bolt", "rsvp storage backend: bolt or sqlite (env: INVITEBOX_STORE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: INVITEBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: INVITEBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: INVITEBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: INVITEBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("invitebox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
