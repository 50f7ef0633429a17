package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alimasry/go-collab-vcs/errs"
	"github.com/alimasry/go-collab-vcs/ot"
)

// FirestoreStore is a Firestore-backed implementation of DocumentStore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) opsCollection(docID string) *firestore.CollectionRef {
	return s.docRef(docID).Collection("operations")
}

func zeroPad(version int) string {
	return fmt.Sprintf("%010d", version)
}

func (s *FirestoreStore) Create(ctx context.Context, id, content string) error {
	now := time.Now()
	_, err := s.docRef(id).Create(ctx, map[string]interface{}{
		"content":   content,
		"version":   0,
		"createdAt": now,
		"updatedAt": now,
	})
	if status.Code(err) == codes.AlreadyExists {
		return errs.InvalidState("document %q already exists", id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	snap, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NotFound("document %q", id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToDocInfo(id, snap)
}

func snapshotToDocInfo(id string, snap *firestore.DocumentSnapshot) (*DocumentInfo, error) {
	data := snap.Data()
	content, _ := data["content"].(string)
	version, _ := data["version"].(int64)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	return &DocumentInfo{
		ID:        id,
		Content:   content,
		Version:   int(version),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var result []DocumentInfo
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		info, err := snapshotToDocInfo(snap.Ref.ID, snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *info)
	}
	return result, nil
}

func (s *FirestoreStore) UpdateContent(ctx context.Context, id, content string, version int) error {
	_, err := s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: content},
		{Path: "version", Value: version},
		{Path: "updatedAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return errs.NotFound("document %q", id)
	}
	return err
}

func (s *FirestoreStore) AppendOperation(ctx context.Context, id string, op ot.Op, version int) error {
	w := ot.ToWire(op)
	fields := map[string]interface{}{
		"type":      w.Type,
		"position":  w.Position,
		"userId":    w.UserID,
		"timestamp": w.Timestamp,
		"opVersion": w.Version,
		"version":   version,
	}
	switch w.Type {
	case ot.TypeInsert:
		fields["content"] = w.Content
	case ot.TypeDelete:
		fields["length"] = w.Length
	}

	// Store with 0-based index: version 1 -> index 0, matching MemoryStore's
	// history slice semantics where GetOperations(fromVersion) returns history[fromVersion:].
	index := version - 1
	_, err := s.opsCollection(id).Doc(zeroPad(index)).Set(ctx, fields)
	return err
}

func (s *FirestoreStore) GetOperations(ctx context.Context, id string, fromVersion int) ([]ot.Op, error) {
	// Verify document exists.
	_, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NotFound("document %q", id)
	}
	if err != nil {
		return nil, err
	}

	iter := s.opsCollection(id).
		OrderBy(firestore.DocumentID, firestore.Asc).
		StartAt(zeroPad(fromVersion)).
		Documents(ctx)
	defer iter.Stop()

	var ops []ot.Op
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		op, err := snapshotToOp(snap)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func snapshotToOp(snap *firestore.DocumentSnapshot) (ot.Op, error) {
	data := snap.Data()
	w := ot.Wire{}
	w.Type, _ = data["type"].(string)
	if v, ok := data["position"].(int64); ok {
		w.Position = int(v)
	}
	if v, ok := data["content"].(string); ok {
		w.Content = v
	}
	if v, ok := data["length"].(int64); ok {
		w.Length = int(v)
	}
	w.UserID, _ = data["userId"].(string)
	if v, ok := data["timestamp"].(int64); ok {
		w.Timestamp = v
	}
	if v, ok := data["opVersion"].(int64); ok {
		w.Version = int(v)
	}

	op, err := w.Op()
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", snap.Ref.ID, err)
	}
	return op, nil
}
