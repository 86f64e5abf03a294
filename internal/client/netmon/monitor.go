// Package netmon tracks process-wide connectivity as a two-state machine and
// raises an edge-triggered event on each transition.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
)

// Pinger probes remote reachability. The transport client satisfies this.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor holds the online/offline state. Transitions fire subscribed
// callbacks exactly once per edge, not once per probe.
type Monitor struct {
	logger logging.Logger

	mu           sync.Mutex
	online       bool
	onReconnect  []func()
	onDisconnect []func()
}

// NewMonitor seeds the monitor with the platform's current connectivity.
func NewMonitor(online bool, logger logging.Logger) *Monitor {
	return &Monitor{online: online, logger: logger}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnReconnect subscribes to the offline→online edge.
func (m *Monitor) OnReconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = append(m.onReconnect, fn)
}

// OnDisconnect subscribes to the online→offline edge.
func (m *Monitor) OnDisconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnect = append(m.onDisconnect, fn)
}

// SetOnline records a new observation. Callbacks run on the caller's
// goroutine, after the state is already updated, and only when the state
// actually changed.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	var fns []func()
	if online {
		fns = append(fns, m.onReconnect...)
	} else {
		fns = append(fns, m.onDisconnect...)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info(context.Background(), "connectivity restored")
	} else {
		m.logger.Warn(context.Background(), "connectivity lost")
	}
	for _, fn := range fns {
		fn()
	}
}

// Watch probes reachability on a ticker until ctx is done, feeding each
// observation into SetOnline. Each probe gets its own timeout so one hung
// request cannot stall the loop.
func (m *Monitor) Watch(ctx context.Context, p Pinger, interval, probeTimeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			err := p.Ping(probeCtx)
			cancel()
			m.SetOnline(err == nil)
		case <-ctx.Done():
			return
		}
	}
}
