package ot

import "fmt"

// Engine abstracts the OT collaboration algorithm.
// Different algorithms (Jupiter, Wave, etc.) implement this interface.
type Engine interface {
	// TransformIncoming transforms a client operation (created at the given
	// revision) against all operations in the history since that revision.
	// Returns the operation transformed to apply at the current server state.
	TransformIncoming(op Op, revision int, history []Op) (Op, error)
}

// JupiterEngine implements the Jupiter OT algorithm: it sequentially
// shifts the incoming operation past each server operation the client
// hasn't seen.
type JupiterEngine struct{}

func (e *JupiterEngine) TransformIncoming(op Op, revision int, history []Op) (Op, error) {
	if revision < 0 || revision > len(history) {
		return nil, fmt.Errorf("invalid revision %d (history len %d)", revision, len(history))
	}

	transformed := op
	for i := revision; i < len(history); i++ {
		transformed, _ = Transform(transformed, history[i])
	}
	return transformed, nil
}
