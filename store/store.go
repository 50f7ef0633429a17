// Package store persists live document content and the operation
// history behind it. The version-control managers keep their own
// in-memory indices; this layer is the durable home for the documents
// the collaboration sessions edit.
package store

import (
	"context"
	"time"

	"github.com/alimasry/go-collab-vcs/ot"
)

// DocumentInfo holds document metadata and content.
type DocumentInfo struct {
	ID        string
	Content   string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore abstracts document persistence.
// Implementations: MemoryStore, FirestoreStore, CachedStore.
type DocumentStore interface {
	Create(ctx context.Context, id, content string) error
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	List(ctx context.Context) ([]DocumentInfo, error)
	UpdateContent(ctx context.Context, id, content string, version int) error
	AppendOperation(ctx context.Context, id string, op ot.Op, version int) error
	GetOperations(ctx context.Context, id string, fromVersion int) ([]ot.Op, error)
}
