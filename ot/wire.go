package ot

import "fmt"

// Operation kind names used on the wire and in persistence.
const (
	TypeInsert = "insert"
	TypeDelete = "delete"
	TypeRetain = "retain"
)

// Wire is the flat JSON representation of an operation, used by the
// websocket protocol and the persistence layer.
type Wire struct {
	Type      string `json:"type"`
	Position  int    `json:"position"`
	Content   string `json:"content,omitempty"`
	Length    int    `json:"length,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Version   int    `json:"version,omitempty"`
}

// ToWire flattens an operation for serialization.
func ToWire(op Op) Wire {
	w := Wire{
		Position:  op.Pos(),
		UserID:    op.Info().UserID,
		Timestamp: op.Info().Timestamp,
		Version:   op.Info().Version,
	}
	switch o := op.(type) {
	case Insert:
		w.Type = TypeInsert
		w.Content = o.Content
	case Delete:
		w.Type = TypeDelete
		w.Length = o.Length
	case Retain:
		w.Type = TypeRetain
	}
	return w
}

// Op rebuilds the tagged operation from its wire form.
func (w Wire) Op() (Op, error) {
	meta := Meta{UserID: w.UserID, Timestamp: w.Timestamp, Version: w.Version}
	switch w.Type {
	case TypeInsert:
		return Insert{Position: w.Position, Content: w.Content, Meta: meta}, nil
	case TypeDelete:
		return Delete{Position: w.Position, Length: w.Length, Meta: meta}, nil
	case TypeRetain:
		return Retain{Position: w.Position, Meta: meta}, nil
	}
	return nil, fmt.Errorf("unknown operation type %q", w.Type)
}
