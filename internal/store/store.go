package store

import "context"

// Kind names a document collection.
type Kind string

const (
	KindProject    Kind = "projects"
	KindAssignment Kind = "assignments"
	KindReview     Kind = "reviews"
)

// Filter matches documents by equality on top-level fields.
type Filter map[string]any

// Store is the persistence boundary for the engagement core. It owns no
// business rules: callers express every mutation as a pure transformation of
// one document, and Update applies it as a single atomic read-modify-write.
type Store interface {
	// Get unmarshals the document into out, or returns ErrNotFound.
	Get(ctx context.Context, kind Kind, id string, out any) error

	// Put overwrites the document (creating it if absent).
	Put(ctx context.Context, kind Kind, id string, doc any) error

	// Update atomically applies fn to the current document bytes and persists
	// the returned value. Errors from fn abort the update with no write.
	// Concurrent updates to the same document are serialized; a caller always
	// sees the latest committed state inside fn.
	Update(ctx context.Context, kind Kind, id string, fn func(raw []byte) (any, error)) error

	// Query unmarshals all matching documents into out (a pointer to a slice).
	Query(ctx context.Context, kind Kind, filter Filter, out any) error

	// Count returns the number of matching documents.
	Count(ctx context.Context, kind Kind, filter Filter) (int, error)

	// Ping reports backend reachability.
	Ping(ctx context.Context) error
}
