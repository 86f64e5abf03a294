// Package sync drains the pending-mutation log against the remote story API.
//
// The Coordinator converts queued mutations into outbound submissions,
// serializes them into a single in-flight pass, updates mutation status,
// promotes successes into the content cache, and publishes lifecycle events.
// Mutations are processed strictly in FIFO order, one at a time: the ordering
// guarantee and the bounded load on the submission endpoint are worth more
// here than throughput.
package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/client"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/netmon"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
	"github.com/google/uuid"
)

// Coordinator orchestrates offline enqueueing and online draining of story
// submissions. Construct with New, then call Initialize before syncing;
// Initialize may be called again at any time to refresh the token.
type Coordinator struct {
	repos   *client.Repositories
	api     client.Client
	monitor *netmon.Monitor
	logger  logging.Logger

	// syncing is the single-flight guard: at most one pass runs at a time,
	// and a second caller returns immediately as a no-op.
	syncing atomic.Bool

	mu          stdsync.Mutex
	listeners   []Listener
	initialized bool
}

// New wires a coordinator. The monitor's reconnect edge triggers an
// automatic drain in the background.
func New(repos *client.Repositories, api client.Client, monitor *netmon.Monitor, logger logging.Logger) *Coordinator {
	c := &Coordinator{repos: repos, api: api, monitor: monitor, logger: logger}
	if monitor != nil {
		monitor.OnReconnect(func() {
			go func() {
				if _, err := c.SyncPending(context.Background()); err != nil {
					logger.Error(context.Background(), "auto-sync after reconnect failed", "error", err)
				}
			}()
		})
	}
	return c
}

// Initialize installs the bearer token and marks the coordinator ready.
// Idempotent; call again to refresh the token.
func (c *Coordinator) Initialize(token string) {
	c.api.SetToken(token)
	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
}

func (c *Coordinator) isInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// OnEvent registers a lifecycle event listener.
func (c *Coordinator) OnEvent(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

func (c *Coordinator) emit(ctx context.Context, e Event) {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if p := recover(); p != nil {
					c.logger.Error(ctx, "sync event listener panicked", "event", string(e.Type), "panic", p)
				}
			}()
			l(e)
		}()
	}
}

// EnqueueOffline validates the payload and appends it to the write-ahead
// queue. It never touches the network, always succeeds locally (or fails
// loudly with a storage error) and emits a queued event.
func (c *Coordinator) EnqueueOffline(ctx context.Context, p models.StoryPayload) (*models.PendingMutation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &models.PendingMutation{
		IdempotencyKey: uuid.NewString(),
		Payload:        p,
		Status:         models.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := c.repos.Queue.Enqueue(ctx, m); err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "story queued for sync", "seq", m.Seq)
	c.emit(ctx, Event{Type: EventQueued, Mutation: m})
	return m, nil
}

// SyncPending drains the queue against the remote system.
//
// If a pass is already in flight, or connectivity is offline, or Initialize
// has not been called yet, the call is a no-op that returns an empty result.
// Otherwise the pass runs to completion over the snapshot of mutations read
// at start: each is submitted exactly once, successes move atomically into
// the content cache, failures are annotated and left queued, and one failure
// never aborts the batch.
func (c *Coordinator) SyncPending(ctx context.Context) (Result, error) {
	if !c.syncing.CompareAndSwap(false, true) {
		c.logger.Info(ctx, "sync already in progress")
		return Result{}, nil
	}
	defer c.syncing.Store(false)

	if !c.isInitialized() {
		c.logger.Warn(ctx, "sync skipped: coordinator not initialized")
		return Result{}, nil
	}
	if c.monitor != nil && !c.monitor.Online() {
		c.logger.Info(ctx, "sync skipped: offline")
		return Result{}, nil
	}

	c.emit(ctx, Event{Type: EventSyncStart})

	pending, err := c.repos.Queue.ListPending(ctx)
	if err != nil {
		c.emit(ctx, Event{Type: EventSyncError, Err: err.Error()})
		return Result{}, fmt.Errorf("loading pending mutations: %w", err)
	}

	var result Result
	if len(pending) == 0 {
		c.emit(ctx, Event{Type: EventSyncComplete, Result: &result})
		return result, nil
	}

	c.logger.Info(ctx, "syncing pending mutations", "count", len(pending))

	for i := range pending {
		m := &pending[i]
		if err := c.syncOne(ctx, m); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, MutationError{Seq: m.Seq, Message: err.Error()})
			if markErr := c.repos.Queue.MarkError(ctx, m.Seq, err.Error()); markErr != nil {
				c.logger.Error(ctx, "failed to record mutation error", "seq", m.Seq, "error", markErr)
			}
			continue
		}
		result.Synced++
		c.emit(ctx, Event{Type: EventSyncProgress, Progress: &Progress{
			Current: result.Synced + result.Failed,
			Total:   len(pending),
			Success: result.Synced,
			Failed:  result.Failed,
		}})
	}

	c.logger.Info(ctx, "sync complete", "synced", result.Synced, "failed", result.Failed)
	c.emit(ctx, Event{Type: EventSyncComplete, Result: &result})
	return result, nil
}

// syncOne submits a single mutation and, on success, promotes the canonical
// record into the content cache while deleting the queue row in the same
// transaction.
func (c *Coordinator) syncOne(ctx context.Context, m *models.PendingMutation) error {
	if err := c.repos.Queue.MarkSyncing(ctx, m.Seq); err != nil {
		return err
	}

	story, err := c.api.CreateStory(ctx, m.Payload, m.IdempotencyKey)
	if err != nil {
		return err
	}

	if story == nil {
		// the server acknowledged without echoing the record; keep the
		// content visible locally under the idempotency key
		story = &models.Story{
			ID:          m.IdempotencyKey,
			Description: m.Payload.Description,
			Lat:         m.Payload.Lat,
			Lon:         m.Payload.Lon,
			CreatedAt:   m.CreatedAt,
		}
	}
	story.Normalize(time.Now().UTC())

	if err := c.repos.Promote(ctx, m.Seq, story); err != nil {
		return fmt.Errorf("promoting mutation %d: %w", m.Seq, err)
	}
	return nil
}

// RetryFailed resets every error-status mutation back to pending and runs a
// sync pass.
func (c *Coordinator) RetryFailed(ctx context.Context) (Result, error) {
	n, err := c.repos.Queue.ResetErrors(ctx)
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		c.logger.Info(ctx, "no failed mutations to retry")
	} else {
		c.logger.Info(ctx, "retrying failed mutations", "count", n)
	}
	return c.SyncPending(ctx)
}

// Status reports queue depth and sync readiness.
func (c *Coordinator) Status(ctx context.Context) (Status, error) {
	pendingCount, err := c.repos.Queue.Count(ctx)
	if err != nil {
		return Status{}, err
	}
	failedCount, err := c.repos.Queue.CountByStatus(ctx, models.StatusError)
	if err != nil {
		return Status{}, err
	}

	online := c.monitor != nil && c.monitor.Online()
	return Status{
		IsSyncing:    c.syncing.Load(),
		PendingCount: pendingCount,
		FailedCount:  failedCount,
		CanSync:      online && pendingCount > 0,
	}, nil
}
