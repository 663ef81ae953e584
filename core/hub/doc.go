// Package hub hosts many actors behind one entry point.
//
// Controllers registered with [Hub.Register] are routed by command tag: a
// message for tag 10000 goes to whichever actor registered it. Keyed actors
// created with [Hub.Spawn] are addressed by key instead, one per key.
//
//	h, err := hub.New(hub.Options{Config: cfg})
//	if err != nil {
//	    return err
//	}
//	defer h.Dispose()
//
//	_, _ = h.Register(&Calculator{}, actor.Options{})
//	sum, err := hub.Call[int](ctx, h, 1, 10000, 2, 3)
//
// Observers passed in [Options.Observers] or via [Hub.OnCompleted] are
// attached to every actor. Every actor's [actor.Base.Peer] resolves through
// the hub, so controllers can reach each other by tag.
//
// # Scheduling
//
// [Config] selects how drain loops run: a goroutine per activation with an
// optional concurrency bound, inline on the submitter, or pinned lanes from
// package perkey where each actor keeps the lane chosen by its name.
package hub
