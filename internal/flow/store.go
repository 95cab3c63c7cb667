package flow

import (
	"context"
	"errors"
	"time"

	"rentora/internal/checkout"
	"rentora/internal/listing"
)

// ErrNotFound means the session never existed or its TTL ran out.
var ErrNotFound = errors.New("flow: session not found")

// Store keeps in-progress flow state under a TTL. Expiry is the
// teardown path for abandoned flows; nothing here outlives a session.
type Store interface {
	SaveCheckout(ctx context.Context, s *checkout.Session, ttl time.Duration) error
	GetCheckout(ctx context.Context, id string) (*checkout.Session, error)
	DeleteCheckout(ctx context.Context, id string) error

	SaveDraft(ctx context.Context, d *listing.Draft, ttl time.Duration) error
	GetDraft(ctx context.Context, id string) (*listing.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}
