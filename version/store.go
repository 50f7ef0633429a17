// Package version keeps per-file version chains: immutable, labeled
// full-content snapshots linked through parent pointers.
package version

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alimasry/go-collab-vcs/diff"
	"github.com/alimasry/go-collab-vcs/errs"
)

// Version is one immutable snapshot of a file. Content never changes
// after creation; ParentVersion is the id of the previous snapshot in
// the chain, empty for the first.
type Version struct {
	ID            string
	FileID        string
	Label         string
	Content       string
	Author        string
	Message       string
	ParentVersion string
	CreatedAt     time.Time
}

// Diff is the comparison of two stored versions.
type Diff struct {
	VersionA  string
	VersionB  string
	Additions int
	Deletions int
	Hunks     []diff.Hunk
}

// Stats summarizes a file's version history.
type Stats struct {
	Versions   int
	TotalBytes int
	Authors    []string
}

// Store owns the version chains. Each file's versions form a singly
// linked list via ParentVersion, newest last. Mutations for one file
// must not be interleaved by the caller; the mutex only makes
// cross-goroutine reads safe.
type Store struct {
	engine *diff.Engine

	mu     sync.RWMutex
	byID   map[string]*Version
	byFile map[string][]*Version // oldest first
}

// NewStore creates a version store using the given diff engine for
// comparisons.
func NewStore(engine *diff.Engine) *Store {
	return &Store{
		engine: engine,
		byID:   make(map[string]*Version),
		byFile: make(map[string][]*Version),
	}
}

// Create appends a new version to the file's chain. The label is
// v{N}.0.0 where N is one past the file's existing version count, and
// the parent pointer references the previous current version.
func (s *Store) Create(fileID, content, message, author string) Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(fileID, content, message, author)
}

func (s *Store) create(fileID, content, message, author string) Version {
	chain := s.byFile[fileID]
	v := &Version{
		ID:        uuid.New().String(),
		FileID:    fileID,
		Label:     label(len(chain) + 1),
		Content:   content,
		Author:    author,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if len(chain) > 0 {
		v.ParentVersion = chain[len(chain)-1].ID
	}
	s.byID[v.ID] = v
	s.byFile[fileID] = append(chain, v)
	return *v
}

// label formats the monotonic per-file label: only the major number moves.
func label(n int) string {
	return fmt.Sprintf("v%d.0.0", n)
}

// Get returns a version snapshot by id.
func (s *Store) Get(versionID string) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.byID[versionID]
	if !ok {
		return Version{}, errs.NotFound("version %q", versionID)
	}
	return *v, nil
}

// History returns a file's versions, oldest first.
func (s *Store) History(fileID string) []Version {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.byFile[fileID]
	out := make([]Version, len(chain))
	for i, v := range chain {
		out[i] = *v
	}
	return out
}

// Latest returns the file's current version, if it has one.
func (s *Store) Latest(fileID string) (Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.byFile[fileID]
	if len(chain) == 0 {
		return Version{}, false
	}
	return *chain[len(chain)-1], true
}

// Diff compares two stored versions by id.
func (s *Store) Diff(versionA, versionB string) (Diff, error) {
	s.mu.RLock()
	va, okA := s.byID[versionA]
	vb, okB := s.byID[versionB]
	s.mu.RUnlock()

	if !okA {
		return Diff{}, errs.NotFound("version %q", versionA)
	}
	if !okB {
		return Diff{}, errs.NotFound("version %q", versionB)
	}

	hunks := s.engine.Compute(va.Content, vb.Content)
	return Diff{
		VersionA:  versionA,
		VersionB:  versionB,
		Additions: diff.Additions(hunks),
		Deletions: diff.Deletions(hunks),
		Hunks:     hunks,
	}, nil
}

// Revert creates a new version whose content equals the target's.
// History is never rewritten; the revert is just another snapshot on
// top of the chain.
func (s *Store) Revert(fileID, versionID, author string) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.byID[versionID]
	if !ok || target.FileID != fileID {
		return Version{}, errs.NotFound("version %q for file %q", versionID, fileID)
	}
	return s.create(fileID, target.Content, "Revert to "+target.Label, author), nil
}

// Delete removes a non-current version from its file's chain. Parent
// pointers of descendants are not repaired: the chain is an audit
// trail, not a strict DAG.
func (s *Store) Delete(versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byID[versionID]
	if !ok {
		return errs.NotFound("version %q", versionID)
	}
	chain := s.byFile[v.FileID]
	if len(chain) > 0 && chain[len(chain)-1].ID == versionID {
		return errs.InvalidState("version %q is the current version of file %q", versionID, v.FileID)
	}

	delete(s.byID, versionID)
	for i, c := range chain {
		if c.ID == versionID {
			s.byFile[v.FileID] = append(chain[:i:i], chain[i+1:]...)
			break
		}
	}
	return nil
}

// Stats reports the version count, cumulative content size and the
// distinct author set for a file.
func (s *Store) Stats(fileID string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.byFile[fileID]
	authors := make(map[string]bool)
	st := Stats{Versions: len(chain)}
	for _, v := range chain {
		st.TotalBytes += len(v.Content)
		authors[v.Author] = true
	}
	for a := range authors {
		st.Authors = append(st.Authors, a)
	}
	sort.Strings(st.Authors)
	return st
}
