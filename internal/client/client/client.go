package client

import (
	"context"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
)

// Client is the transport contract to the remote story system.
type Client interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)

	// SetToken installs or refreshes the bearer token used by subsequent calls.
	SetToken(token string)

	// Ping reports whether the remote system is reachable. Any HTTP-level
	// answer counts as reachable; only transport failures are errors.
	Ping(ctx context.Context) error

	// ListStories fetches the canonical story list.
	ListStories(ctx context.Context) ([]models.Story, error)

	// CreateStory submits one story. The idempotency key accompanies every
	// attempt so a resubmission after a crash de-duplicates on the server.
	// The returned story is nil when the server acknowledged the write
	// without echoing the created record.
	CreateStory(ctx context.Context, p models.StoryPayload, idempotencyKey string) (*models.Story, error)
}
