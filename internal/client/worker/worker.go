package worker

import (
	"context"
	"encoding/json"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/cachedata"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
)

// Notification is a decoded push payload.
type Notification struct {
	Title string
	Body  string
}

const (
	defaultNotificationTitle = "Story Map Notification"
	defaultNotificationBody  = "You have a new notification"
)

// Notifier receives decoded push notifications. The host decides how to
// present them.
type Notifier func(Notification)

// Worker owns the interception lifecycle: warm the static partition at
// install time, rotate stale partitions at activation, route requests, and
// decode push payloads.
type Worker struct {
	router   *Router
	cache    cachedata.Repository
	fetch    Fetcher
	parts    Partitions
	manifest []string
	notify   Notifier
	logger   logging.Logger
}

// New assembles a worker. manifest lists the critical asset URLs warmed at
// install time; notify may be nil when the host does not present
// notifications.
func New(cache cachedata.Repository, fetch Fetcher, parts Partitions, manifest []string, notify Notifier, logger logging.Logger) *Worker {
	return &Worker{
		router:   NewRouter(cache, fetch, parts, logger),
		cache:    cache,
		fetch:    fetch,
		parts:    parts,
		manifest: manifest,
		notify:   notify,
		logger:   logger,
	}
}

// OnInstall populates the static partition with the asset manifest. A
// single asset that fails to warm is logged and skipped; one missing
// optional asset must never block installation.
func (w *Worker) OnInstall(ctx context.Context) error {
	for _, assetURL := range w.manifest {
		req := Request{URL: assetURL, Method: "GET"}
		resp, err := w.fetch.Fetch(ctx, req)
		if err != nil || resp.Status != 200 {
			w.logger.Warn(ctx, "failed to warm static asset", "url", assetURL, "error", err)
			continue
		}
		w.router.store(ctx, w.parts.Static, req, resp)
	}
	w.logger.Info(ctx, "static assets warmed", "count", len(w.manifest))
	return nil
}

// OnActivate deletes every cache partition whose name is not in the current
// set, so rotating the version suffix cleans up old generations without
// manual intervention.
func (w *Worker) OnActivate(ctx context.Context) error {
	removed, err := w.cache.PurgeExcept(ctx, w.parts.Names())
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		w.logger.Info(ctx, "purged stale cache partitions", "partitions", removed)
	}
	return nil
}

// OnRequest routes one intercepted request through its class policy.
func (w *Worker) OnRequest(ctx context.Context, req Request) (*Response, error) {
	return w.router.Handle(ctx, req)
}

// pushPayload mirrors the wire shape of a push message.
type pushPayload struct {
	Title   string `json:"title"`
	Options struct {
		Body string `json:"body"`
	} `json:"options"`
}

// OnPush decodes a push payload and hands it to the notifier. Undecodable
// payloads still produce the default notification rather than an error.
func (w *Worker) OnPush(ctx context.Context, payload []byte) {
	n := Notification{Title: defaultNotificationTitle, Body: defaultNotificationBody}

	var p pushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		w.logger.Warn(ctx, "undecodable push payload", "error", err)
	} else {
		if p.Title != "" {
			n.Title = p.Title
		}
		if p.Options.Body != "" {
			n.Body = p.Options.Body
		}
	}

	if w.notify != nil {
		w.notify(n)
	}
}
