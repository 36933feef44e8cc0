/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		celebration: time.Second,
		maxAttempts: 8,
		port:        8080,
		secret:      "staub",
		store:       "bolt",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "sqlite", mutate: func(c *Config) { c.store = "sqlite" }},
		{name: "tls pair", mutate: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "lone cert", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: "--tls-key"},
		{name: "port zero", mutate: func(c *Config) { c.port = 0 }, wantErr: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.port = 70000 }, wantErr: "invalid port"},
		{name: "blank secret", mutate: func(c *Config) { c.secret = "  \t " }, wantErr: "--secret"},
		{name: "no attempts", mutate: func(c *Config) { c.maxAttempts = 0 }, wantErr: "max attempts"},
		{name: "negative celebration", mutate: func(c *Config) { c.celebration = -time.Second }, wantErr: "celebration"},
		{name: "unknown store", mutate: func(c *Config) { c.store = "redis" }, wantErr: "invalid store"},
		{name: "key without recipients", mutate: func(c *Config) { c.resendKey = "re_123" }, wantErr: "--mail-to"},
		{name: "key with recipients", mutate: func(c *Config) {
			c.resendKey = "re_123"
			c.mailTo = []string{"host@example.com"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	_ = newCmd(cfg)

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, "staub", cfg.secret)
	assert.Equal(t, 8, cfg.maxAttempts)
	assert.Equal(t, 3*time.Second, cfg.celebration)
	assert.Equal(t, "bolt", cfg.store)
	assert.NoError(t, cfg.validate())
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("INVITEBOX_PORT", "9090")
	t.Setenv("INVITEBOX_SECRET", "hello world")
	t.Setenv("INVITEBOX_MAX_ATTEMPTS", "6")
	t.Setenv("INVITEBOX_STORE", "sqlite")

	cfg := &Config{}
	_ = newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, "hello world", cfg.secret)
	assert.Equal(t, 6, cfg.maxAttempts)
	assert.Equal(t, "sqlite", cfg.store)
}
