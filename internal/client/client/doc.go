// Package client contains client-side building blocks for the storymap CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the story backend: Login, Ping, ListStories, CreateStory.
//  2. A concrete HTTP implementation (see HTTPClient) that submits stories
//     as multipart POST requests with bearer authorization and a
//     client-generated idempotency key, and maps failures to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are matched with errors.Is against the sentinels in
// internal/common: ErrTransport for network/server failures, ErrUnauthorized
// for rejected credentials, ErrUnsupported when the local store cannot be
// opened.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
