// Package cli implements the interactive storymap client.
//
// The App wires the local store, the HTTP transport, the connectivity
// monitor and the sync coordinator, then drives a small REPL. Stories added
// while offline land in the pending-mutation queue and drain automatically
// when connectivity returns; "sync", "retry" and "status" expose the queue
// to the user directly.
package cli
