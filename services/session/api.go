package session

import (
	"context"
	"time"
)

// IdleTimeout is how long a session stays valid after its last access.
const IdleTimeout = 10 * time.Minute

type Session struct {
	Token        string
	ExternalUID  string
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Store keeps server-side per-visitor state keyed by an opaque token.
// An expired token behaves exactly like an unknown one.
//
//go:generate mockgen -source=api.go -package session -destination store_mock.go Store
type Store interface {
	Create(c context.Context, externalUID string) (string, error)
	Resolve(c context.Context, token string) (string, bool, error)
	Clear(c context.Context, token string) error
}
