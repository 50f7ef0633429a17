package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/alimasry/go-collab-vcs/audit"
	"github.com/alimasry/go-collab-vcs/branch"
	"github.com/alimasry/go-collab-vcs/conflict"
	"github.com/alimasry/go-collab-vcs/diff"
	"github.com/alimasry/go-collab-vcs/ot"
	"github.com/alimasry/go-collab-vcs/server"
	"github.com/alimasry/go-collab-vcs/store"
	"github.com/alimasry/go-collab-vcs/version"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	project := flag.String("firestore-project", "", "Firestore project id (empty = in-memory persistence)")
	flushEvery := flag.Duration("flush-interval", 5*time.Second, "write-behind flush interval for the Firestore cache")
	flag.Parse()

	var docs store.DocumentStore = store.NewMemoryStore()
	if *project != "" {
		client, err := firestore.NewClient(context.Background(), *project)
		if err != nil {
			log.Fatalf("firestore client: %v", err)
		}
		defer client.Close()
		cached := store.NewCachedStore(store.NewFirestoreStore(client), *flushEvery)
		defer cached.Close()
		docs = cached
	}

	engine := diff.NewEngine()
	versions := version.NewStore(engine)
	sink := audit.LogSink{}
	branches := branch.NewManager(engine, versions, sink)

	resolver := conflict.NewResolver()
	hub := server.NewHub(docs, &ot.JupiterEngine{}, versions, resolver, sink)
	go hub.Run()

	handler := server.NewHandler(hub, &server.API{Versions: versions, Branches: branches})

	log.Printf("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal(err)
	}
}
