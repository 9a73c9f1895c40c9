package lookup

import (
	"context"
	"errors"
	"strings"

	"longbox/internal/reconcile"
)

// ErrUnavailable marks a gateway that could not be reached or answered
// with a server error after retries. Callers treat it like "no match"
// unless the record stays below the minimal identity.
var ErrUnavailable = errors.New("lookup service unavailable")

// Identity carries whatever identifying fields reconciliation has so
// far. Any field may be empty; a gateway decides what it can do with
// the rest.
type Identity struct {
	Publisher string
	Series    string
	Number    string
	Title     string
}

// Empty reports whether there is nothing to search with.
func (id Identity) Empty() bool {
	return strings.TrimSpace(id.Series) == "" && strings.TrimSpace(id.Title) == ""
}

// Key is a stable cache key over the populated fields.
func (id Identity) Key() string {
	return strings.ToLower(strings.Join([]string{id.Publisher, id.Series, id.Number, id.Title}, "\x1f"))
}

// Gateway resolves a partial identity to zero or one canonical record.
// A nil record with a nil error means no match.
type Gateway interface {
	Name() string
	Search(ctx context.Context, id Identity) (*reconcile.Record, error)
}

// Func adapts a function to the Gateway interface, mostly for tests.
type Func func(ctx context.Context, id Identity) (*reconcile.Record, error)

func (f Func) Name() string { return "func" }

func (f Func) Search(ctx context.Context, id Identity) (*reconcile.Record, error) {
	return f(ctx, id)
}
