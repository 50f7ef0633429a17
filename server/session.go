package server

import (
	"context"
	"log"
	"time"

	"github.com/alimasry/go-collab-vcs/audit"
	"github.com/alimasry/go-collab-vcs/conflict"
	"github.com/alimasry/go-collab-vcs/ot"
	"github.com/alimasry/go-collab-vcs/store"
	"github.com/alimasry/go-collab-vcs/version"
)

// snapshotEvery is how many applied operations pass between periodic
// version snapshots of a session's document.
const snapshotEvery = 25

type opMessage struct {
	client *Client
	msg    ClientMessage
}

// Session manages collaboration for a single document. All operations
// are serialized through a single goroutine, which is what gives the
// core its single-writer-per-aggregate guarantee.
type Session struct {
	docID    string
	doc      *ot.Document
	engine   ot.Engine
	store    store.DocumentStore
	versions *version.Store
	resolver *conflict.Resolver
	sink     audit.Sink
	clients  map[*Client]bool

	opsSinceSnapshot int

	incoming chan opMessage
	join     chan *Client
	leave    chan *Client
	stop     chan struct{}
}

func newSession(docID, content string, rev int, history []ot.Op, engine ot.Engine,
	st store.DocumentStore, versions *version.Store, resolver *conflict.Resolver, sink audit.Sink) *Session {
	doc := ot.NewDocument(content)
	doc.Version = rev
	doc.History = history
	return &Session{
		docID:    docID,
		doc:      doc,
		engine:   engine,
		store:    st,
		versions: versions,
		resolver: resolver,
		sink:     sink,
		clients:  make(map[*Client]bool),
		incoming: make(chan opMessage, 64),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		stop:     make(chan struct{}),
	}
}

// Run is the session's main loop. It serializes all operations.
func (s *Session) Run() {
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case om := <-s.incoming:
			s.handleOp(om)
		case <-s.stop:
			return
		}
	}
}

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	// Send current document state to the joining client.
	clients := s.clientInfos()
	c.sendMsg(ServerMessage{
		Type:     MsgDoc,
		DocID:    s.docID,
		Content:  s.doc.Content,
		Revision: s.doc.Version,
		Clients:  clients,
	})

	// Notify other clients about the new user.
	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
				Color:    c.Color,
			})
		}
	}
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	close(c.send)

	// Notify others.
	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}
}

func (s *Session) handleOp(om opMessage) {
	raw, err := om.msg.Op.Op()
	if err != nil {
		om.client.sendError("bad operation: " + err.Error())
		return
	}
	raw = s.stampMeta(raw, om)

	if om.msg.Revision < 0 || om.msg.Revision > len(s.doc.History) {
		om.client.sendError("invalid revision")
		return
	}

	// Check the raw operation against everything applied since the
	// client's revision; those are the edits it raced with.
	conflicts := s.detectConflicts(raw, s.doc.History[om.msg.Revision:])

	// Rebase past the unseen history.
	transformed, err := s.engine.TransformIncoming(raw, om.msg.Revision, s.doc.History)
	if err != nil {
		log.Printf("session %s: transform error: %v", s.docID, err)
		om.client.sendError("transform error: " + err.Error())
		return
	}

	// Apply to the document.
	if err := s.doc.Apply(transformed); err != nil {
		log.Printf("session %s: apply error: %v", s.docID, err)
		om.client.sendError("apply error: " + err.Error())
		return
	}

	// Persist. Failures are logged, never surfaced to the editor.
	ctx := context.Background()
	if err := s.store.UpdateContent(ctx, s.docID, s.doc.Content, s.doc.Version); err != nil {
		log.Printf("session %s: persist content: %v", s.docID, err)
	}
	if err := s.store.AppendOperation(ctx, s.docID, transformed, s.doc.Version); err != nil {
		log.Printf("session %s: persist op: %v", s.docID, err)
	}

	s.maybeSnapshot(transformed.Info().UserID)

	audit.Emit(s.sink, audit.Record{
		UserID:       transformed.Info().UserID,
		Action:       "document.edit",
		ResourceType: "document",
		ResourceID:   s.docID,
		Success:      true,
	})

	// Ack the sender.
	om.client.sendMsg(ServerMessage{
		Type:      MsgAck,
		Revision:  s.doc.Version,
		Conflicts: conflicts,
	})

	// Broadcast to other clients.
	wire := ot.ToWire(transformed)
	for c := range s.clients {
		if c != om.client {
			c.sendMsg(ServerMessage{
				Type:      MsgOp,
				DocID:     s.docID,
				Revision:  s.doc.Version,
				Op:        &wire,
				ClientID:  om.client.ID,
				Conflicts: conflicts,
			})
		}
	}
}

// stampMeta fills in the authorship fields a client is allowed to omit.
func (s *Session) stampMeta(op ot.Op, om opMessage) ot.Op {
	meta := op.Info()
	if meta.UserID == "" {
		meta.UserID = om.client.ID
	}
	if meta.Timestamp == 0 {
		meta.Timestamp = time.Now().UnixMilli()
	}
	if meta.Version == 0 {
		meta.Version = om.msg.Revision
	}
	switch o := op.(type) {
	case ot.Insert:
		o.Meta = meta
		return o
	case ot.Delete:
		o.Meta = meta
		return o
	case ot.Retain:
		o.Meta = meta
		return o
	}
	return op
}

// detectConflicts runs the resolver pairwise between the incoming raw
// operation and each concurrent one, auto-resolving where a strategy
// exists.
func (s *Session) detectConflicts(raw ot.Op, concurrent []ot.Op) []ConflictInfo {
	var infos []ConflictInfo
	for _, prior := range concurrent {
		found := s.resolver.Detect([]ot.Op{prior, raw})
		for _, c := range found {
			if resolved, ok := s.resolver.Resolve(c.Operations[0], c.Operations[1]); ok {
				c = resolved
			}
			infos = append(infos, ConflictInfo{
				ID:         c.ID,
				Type:       string(c.Type),
				Position:   c.Position,
				Resolved:   c.Resolved,
				Resolution: c.Resolution,
			})
		}
	}
	return infos
}

// maybeSnapshot commits the live content into the version store after
// every snapshotEvery applied operations.
func (s *Session) maybeSnapshot(author string) {
	if s.versions == nil {
		return
	}
	s.opsSinceSnapshot++
	if s.opsSinceSnapshot < snapshotEvery {
		return
	}
	s.opsSinceSnapshot = 0
	s.versions.Create(s.docID, s.doc.Content, "Periodic snapshot", author)
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	return infos
}
