// Package branch manages named branch pointers into a file's version
// chain: creation, merging, abandonment and deletion.
package branch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alimasry/go-collab-vcs/audit"
	"github.com/alimasry/go-collab-vcs/diff"
	"github.com/alimasry/go-collab-vcs/errs"
	"github.com/alimasry/go-collab-vcs/version"
)

// Status is a branch's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusMerged    Status = "merged"
	StatusAbandoned Status = "abandoned"
)

// Branch is a named, mutable pointer to a version snapshot. Status
// moves active->merged on a successful merge as source, active->
// abandoned explicitly or when a merge conflicts, and only merged or
// abandoned branches may be deleted.
type Branch struct {
	ID        string
	Name      string
	FileID    string
	ParentID  string
	Version   string
	CreatedBy string
	Status    Status
	CreatedAt time.Time
}

// StatusReport is the answer to a branch status query.
type StatusReport struct {
	Status       Status
	HasConflicts bool
	CanMerge     bool
}

// Resolution is one conflict-resolution instruction for ResolveConflicts.
type Resolution struct {
	Path       string
	Resolution string // accept_theirs, accept_yours or manual
	Content    string // required for manual
}

// Comparison is the diff between two branches' contents.
type Comparison struct {
	BranchA   string
	BranchB   string
	Additions int
	Deletions int
	Hunks     []diff.Hunk
}

// Manager owns the branch records. Like the version store it assumes a
// single writer per branch; the mutex only guards cross-goroutine reads.
type Manager struct {
	engine   *diff.Engine
	versions *version.Store
	sink     audit.Sink

	mu       sync.RWMutex
	branches map[string]*Branch
}

// NewManager creates a branch manager on top of the given version
// store and diff engine. The audit sink may be nil.
func NewManager(engine *diff.Engine, versions *version.Store, sink audit.Sink) *Manager {
	return &Manager{
		engine:   engine,
		versions: versions,
		sink:     sink,
		branches: make(map[string]*Branch),
	}
}

// Create opens a new active branch pointing at the file's current
// latest version. A file with no versions yet gets a freshly minted
// placeholder version id.
func (m *Manager) Create(name, fileID, parentID, createdBy string) Branch {
	versionID := uuid.New().String() // placeholder until the file has versions
	if latest, ok := m.versions.Latest(fileID); ok {
		versionID = latest.ID
	}

	b := &Branch{
		ID:        uuid.New().String(),
		Name:      name,
		FileID:    fileID,
		ParentID:  parentID,
		Version:   versionID,
		CreatedBy: createdBy,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.branches[b.ID] = b
	m.mu.Unlock()

	audit.Emit(m.sink, audit.Record{
		UserID:       createdBy,
		Action:       "branch.create",
		ResourceType: "branch",
		ResourceID:   b.ID,
		Success:      true,
		Metadata:     map[string]string{"name": name, "fileId": fileID},
	})
	return *b
}

// Get returns a branch snapshot by id.
func (m *Manager) Get(branchID string) (Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.branches[branchID]
	if !ok {
		return Branch{}, errs.NotFound("branch %q", branchID)
	}
	return *b, nil
}

// GetByName finds a file's branch by name.
func (m *Manager) GetByName(fileID, name string) (Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b := m.findByName(fileID, name); b != nil {
		return *b, nil
	}
	return Branch{}, errs.NotFound("branch %q for file %q", name, fileID)
}

func (m *Manager) findByName(fileID, name string) *Branch {
	for _, b := range m.branches {
		if b.FileID == fileID && b.Name == name {
			return b
		}
	}
	return nil
}

// content resolves the text a branch points at. A placeholder version
// id (file had no versions when the branch was created) reads as empty.
func (m *Manager) content(b *Branch) string {
	v, err := m.versions.Get(b.Version)
	if err != nil {
		return ""
	}
	return v.Content
}

// latestContent is the file's current head content, empty when the
// file has no versions.
func (m *Manager) latestContent(fileID string) string {
	if latest, ok := m.versions.Latest(fileID); ok {
		return latest.Content
	}
	return ""
}

// Merge merges the source branch into the target. The target branch's
// pointed-at content serves as the merge base and the file's head
// content as "yours"; when the target points at the head the two
// collapse into the same text, which only approximates a genuine
// common-ancestor merge. On conflict the source is marked abandoned
// before the merge fails — that side effect is part of the contract.
func (m *Manager) Merge(sourceID, targetID string) (version.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.branches[sourceID]
	if !ok {
		return version.Version{}, errs.NotFound("branch %q", sourceID)
	}
	target, ok := m.branches[targetID]
	if !ok {
		return version.Version{}, errs.NotFound("branch %q", targetID)
	}
	if source.Status != StatusActive {
		return version.Version{}, errs.InvalidState("source branch %q is %s", sourceID, source.Status)
	}
	if target.Status != StatusActive {
		return version.Version{}, errs.InvalidState("target branch %q is %s", targetID, target.Status)
	}
	if source.FileID != target.FileID {
		return version.Version{}, errs.InvalidState("branches %q and %q belong to different files", sourceID, targetID)
	}

	base := m.content(target)
	theirs := m.content(source)
	yours := m.latestContent(target.FileID)

	merged, ok := m.engine.ThreeWayMerge(base, theirs, yours)
	if !ok {
		source.Status = StatusAbandoned
		m.emitMerge(source, target, false)
		return version.Version{}, errs.InvalidState("merge of %q into %q conflicts", source.Name, target.Name)
	}

	v := m.versions.Create(target.FileID, merged, "Merge branch "+source.Name, source.CreatedBy)
	target.Version = v.ID
	source.Status = StatusMerged
	m.emitMerge(source, target, true)
	return v, nil
}

func (m *Manager) emitMerge(source, target *Branch, success bool) {
	audit.Emit(m.sink, audit.Record{
		UserID:       source.CreatedBy,
		Action:       "branch.merge",
		ResourceType: "branch",
		ResourceID:   source.ID,
		Success:      success,
		Metadata:     map[string]string{"target": target.ID, "fileId": target.FileID},
	})
}

// Abandon marks a branch abandoned. It is idempotent and ignores the
// current status.
func (m *Manager) Abandon(branchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.branches[branchID]
	if !ok {
		return errs.NotFound("branch %q", branchID)
	}
	b.Status = StatusAbandoned
	return nil
}

// Status reports a branch's lifecycle state plus a trial merge against
// the file's branch named "main", if one exists, without committing
// anything.
func (m *Manager) Status(branchID string) (StatusReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.branches[branchID]
	if !ok {
		return StatusReport{}, errs.NotFound("branch %q", branchID)
	}

	hasConflicts := false
	if main := m.findByName(b.FileID, "main"); main != nil && main.ID != b.ID {
		hasConflicts = m.engine.HasMergeConflicts(
			m.content(main), m.content(b), m.latestContent(b.FileID))
	}
	return StatusReport{
		Status:       b.Status,
		HasConflicts: hasConflicts,
		CanMerge:     b.Status == StatusActive && !hasConflicts,
	}, nil
}

// ResolveConflicts applies resolution entries against the file's
// latest content and commits the outcome as one new version. A manual
// entry replaces the whole text and requires content.
func (m *Manager) ResolveConflicts(branchID string, resolutions []Resolution) (version.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.branches[branchID]
	if !ok {
		return version.Version{}, errs.NotFound("branch %q", branchID)
	}

	result := m.latestContent(b.FileID)
	for _, r := range resolutions {
		switch r.Resolution {
		case "accept_theirs":
			result = m.content(b)
		case "accept_yours":
			// Keep the file's current text.
		case "manual":
			if r.Content == "" {
				return version.Version{}, errs.Validation("manual resolution for %q requires content", r.Path)
			}
			result = r.Content
		default:
			return version.Version{}, errs.Validation("unknown resolution %q", r.Resolution)
		}
	}

	v := m.versions.Create(b.FileID, result, "Resolve conflicts on "+b.Name, b.CreatedBy)
	b.Version = v.ID
	audit.Emit(m.sink, audit.Record{
		UserID:       b.CreatedBy,
		Action:       "branch.resolve",
		ResourceType: "branch",
		ResourceID:   b.ID,
		Success:      true,
	})
	return v, nil
}

// Compare diffs two branches' contents.
func (m *Manager) Compare(branchA, branchB string) (Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.branches[branchA]
	if !ok {
		return Comparison{}, errs.NotFound("branch %q", branchA)
	}
	b, ok := m.branches[branchB]
	if !ok {
		return Comparison{}, errs.NotFound("branch %q", branchB)
	}

	hunks := m.engine.Compute(m.content(a), m.content(b))
	return Comparison{
		BranchA:   branchA,
		BranchB:   branchB,
		Additions: diff.Additions(hunks),
		Deletions: diff.Deletions(hunks),
		Hunks:     hunks,
	}, nil
}

// History walks the parent chain starting at the given branch, nearest
// first. A dangling parent id ends the walk.
func (m *Manager) History(branchID string) ([]Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.branches[branchID]
	if !ok {
		return nil, errs.NotFound("branch %q", branchID)
	}

	var out []Branch
	for b != nil {
		out = append(out, *b)
		if b.ParentID == "" {
			break
		}
		b = m.branches[b.ParentID]
	}
	return out, nil
}

// Rename changes a branch's name.
func (m *Manager) Rename(branchID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.branches[branchID]
	if !ok {
		return errs.NotFound("branch %q", branchID)
	}
	b.Name = name
	return nil
}

// Delete removes a merged or abandoned branch. Active branches cannot
// be deleted.
func (m *Manager) Delete(branchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.branches[branchID]
	if !ok {
		return errs.NotFound("branch %q", branchID)
	}
	if b.Status == StatusActive {
		return errs.InvalidState("branch %q is active", branchID)
	}
	delete(m.branches, branchID)

	audit.Emit(m.sink, audit.Record{
		UserID:       b.CreatedBy,
		Action:       "branch.delete",
		ResourceType: "branch",
		ResourceID:   branchID,
		Success:      true,
	})
	return nil
}
