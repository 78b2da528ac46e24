// Package inspect serves a live view of a reconciliation tree over HTTP.
//
// A Hub is attached to the tree as an observer and snapshots it after every
// frame. The Server exposes the latest snapshot as JSON, streams frame
// reports over a websocket and serves Prometheus metrics:
//
//	hub := inspect.NewHub(logger)
//	tree := recon.New[Params](recon.WithObserver(hub))
//	hub.Track(tree)
//
//	srv := inspect.NewServer(hub, inspect.Config{Gatherer: registry})
//	go srv.ListenAndServe(ctx, "localhost:7070")
//
// Node params are encoded with encoding/json, so they should be plain data.
package inspect
