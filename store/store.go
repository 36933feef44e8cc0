/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store provides the durable key-value stores RSVPs are written to.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrNotConfigured = errors.New("storage is not configured")
	ErrExists        = errors.New("key already exists")
)

// Store is a write-once key-value store. Put returns ErrExists rather than
// overwriting a key.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open opens the backend named kind ("bolt" or "sqlite") at path.
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(kind) {
	case "", "bolt", "bbolt":
		return OpenBolt(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store %q (must be bolt or sqlite)", kind)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	return nil
}
