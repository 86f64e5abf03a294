package cli

import (
	"context"
	"fmt"
	"log"
)

// Sync drains the pending queue now and reports the pass result. A pass
// already in flight, or an offline client, makes this a quiet no-op.
func (a *App) Sync(ctx context.Context) error {
	if !a.monitor.Online() {
		fmt.Println("Offline: cannot sync now")
		return nil
	}

	result, err := a.coordinator.SyncPending(ctx)
	if err != nil {
		log.Printf("sync failed: %v", err)
		return err
	}

	fmt.Printf("Sync finished: %d synced, %d failed\n", result.Synced, result.Failed)
	for _, e := range result.Errors {
		fmt.Printf("  #%d: %s\n", e.Seq, e.Message)
	}
	return nil
}

// Retry resets failed submissions back to pending and drains again.
func (a *App) Retry(ctx context.Context) error {
	result, err := a.coordinator.RetryFailed(ctx)
	if err != nil {
		log.Printf("retry failed: %v", err)
		return err
	}
	fmt.Printf("Retry finished: %d synced, %d failed\n", result.Synced, result.Failed)
	return nil
}

// Status prints connectivity, queue depth and whether a drain would run.
func (a *App) Status(ctx context.Context) error {
	st, err := a.coordinator.Status(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	cached, err := a.repos.Stories.Count(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	online := "offline"
	if a.monitor.Online() {
		online = "online"
	}
	fmt.Printf("Connectivity:    %s\n", online)
	fmt.Printf("Cached stories:  %d\n", cached)
	fmt.Printf("Pending queue:   %d (%d failed)\n", st.PendingCount, st.FailedCount)
	fmt.Printf("Sync in flight:  %t\n", st.IsSyncing)
	fmt.Printf("Can sync now:    %t\n", st.CanSync)
	return nil
}
