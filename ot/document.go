package ot

// Document represents a live collaborative document with its applied
// operation history.
type Document struct {
	Content string
	Version int
	History []Op
}

// NewDocument creates a new document with the given initial content.
func NewDocument(content string) *Document {
	return &Document{Content: content}
}

// Apply validates an operation against the current content, applies it
// and appends it to history. Retains are accepted but do not advance
// the version.
func (d *Document) Apply(op Op) error {
	if err := Validate(op, len(d.Content)); err != nil {
		return err
	}
	if _, ok := op.(Retain); ok {
		return nil
	}
	d.Content = Apply(d.Content, op)
	d.Version++
	d.History = append(d.History, op)
	return nil
}
