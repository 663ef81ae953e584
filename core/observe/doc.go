// Package observe provides completion observers for actors: a log line per
// message, controller state snapshots into a kv.Store, and an event feed of
// message records onto a Publisher.
package observe
