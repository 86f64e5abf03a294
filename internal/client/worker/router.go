package worker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/cachedata"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
)

// Response is what the router hands back to the host. The router never
// returns a hard error for api or image requests: it degrades to a cache
// entry, a stand-in payload or a placeholder instead.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
	Offline     bool // synthesized stand-in, not real data
}

// Fetcher performs the actual network fetch for an intercepted request.
type Fetcher interface {
	Fetch(ctx context.Context, r Request) (*Response, error)
}

// Partitions names the three cache partitions. Bumping the version suffix
// and redeploying purges the old generation on the next activation.
type Partitions struct {
	Static string
	API    string
	Image  string
}

// DefaultPartitions derives the partition set for a deploy version,
// e.g. "v1" → storymap-static-v1.
func DefaultPartitions(version string) Partitions {
	return Partitions{
		Static: "storymap-static-" + version,
		API:    "storymap-api-" + version,
		Image:  "storymap-images-" + version,
	}
}

// Names lists the current partition names; anything else is stale.
func (p Partitions) Names() []string {
	return []string{p.Static, p.API, p.Image}
}

const offlineMessage = "You are offline. Showing cached data."

// placeholderSVG is returned for images that are neither cached nor
// fetchable, so a missing picture never surfaces as a hard error.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"><rect width="100" height="100" fill="#ccc"/><text x="50%" y="50%" text-anchor="middle" fill="#666">Offline</text></svg>`

// shellKey is the request identity of the cached app shell used as the
// navigation fallback.
const shellKey = "GET /index.html"

// Router applies one cache policy per resource class.
type Router struct {
	cache  cachedata.Repository
	fetch  Fetcher
	parts  Partitions
	logger logging.Logger
}

// NewRouter wires a router over the partitioned request cache.
func NewRouter(cache cachedata.Repository, fetch Fetcher, parts Partitions, logger logging.Logger) *Router {
	return &Router{cache: cache, fetch: fetch, parts: parts, logger: logger}
}

// Handle dispatches a request to its class policy. Each intercepted request
// is an independent operation; cache writes for the same request identity
// are last-writer-wins.
func (r *Router) Handle(ctx context.Context, req Request) (*Response, error) {
	switch Classify(req) {
	case ClassAPI:
		return r.handleAPI(ctx, req), nil
	case ClassImage:
		return r.handleImage(ctx, req), nil
	case ClassStatic:
		return r.handleStatic(ctx, req), nil
	default:
		return r.fetch.Fetch(ctx, req)
	}
}

// handleAPI is network-first: fresh data wins, the cache catches the fall,
// and a schema-compatible stand-in catches everything else.
func (r *Router) handleAPI(ctx context.Context, req Request) *Response {
	resp, err := r.fetch.Fetch(ctx, req)
	if err == nil {
		if resp.Status == http.StatusOK {
			r.store(ctx, r.parts.API, req, resp)
		}
		return resp
	}

	if cached := r.lookup(ctx, r.parts.API, req); cached != nil {
		return cached
	}

	r.logger.Info(ctx, "api request offline with no cache entry, serving stand-in", "url", req.URL)
	return &Response{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(fmt.Sprintf(`{"error":true,"message":%q,"listStory":[]}`, offlineMessage)),
		Offline:     true,
	}
}

// handleImage is cache-first; a missing, unfetchable image degrades to a
// placeholder.
func (r *Router) handleImage(ctx context.Context, req Request) *Response {
	if cached := r.lookup(ctx, r.parts.Image, req); cached != nil {
		return cached
	}

	resp, err := r.fetch.Fetch(ctx, req)
	if err == nil {
		if resp.Status == http.StatusOK {
			r.store(ctx, r.parts.Image, req, resp)
		}
		return resp
	}

	return &Response{
		Status:      http.StatusOK,
		ContentType: "image/svg+xml",
		Body:        []byte(placeholderSVG),
		Offline:     true,
	}
}

// handleStatic is cache-first. A failed navigation falls back to the cached
// app shell; any other failure becomes an explicit error status instead of a
// propagated fetch error.
func (r *Router) handleStatic(ctx context.Context, req Request) *Response {
	if cached := r.lookup(ctx, r.parts.Static, req); cached != nil {
		return cached
	}

	resp, err := r.fetch.Fetch(ctx, req)
	if err == nil {
		if (req.Method == "" || req.Method == http.MethodGet) && resp.Status == http.StatusOK {
			r.store(ctx, r.parts.Static, req, resp)
		}
		return resp
	}

	if req.Navigate {
		if shell := r.lookupKey(ctx, r.parts.Static, shellKey); shell != nil {
			return shell
		}
	}

	return &Response{
		Status:      http.StatusServiceUnavailable,
		ContentType: "text/plain",
		Body:        []byte("offline"),
		Offline:     true,
	}
}

func (r *Router) lookup(ctx context.Context, partition string, req Request) *Response {
	return r.lookupKey(ctx, partition, req.Key())
}

func (r *Router) lookupKey(ctx context.Context, partition, key string) *Response {
	e, err := r.cache.Get(ctx, partition, key)
	if err != nil {
		return nil
	}
	return &Response{
		Status:      e.Status,
		ContentType: e.ContentType,
		Body:        e.Body,
		FromCache:   true,
	}
}

// store persists a response copy. A failed write is logged and swallowed:
// caching is best-effort and must never break the read path.
func (r *Router) store(ctx context.Context, partition string, req Request, resp *Response) {
	err := r.cache.Put(ctx, &models.CacheEntry{
		Partition:   partition,
		RequestKey:  req.Key(),
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Body:        resp.Body,
		StoredAt:    time.Now().UTC(),
	})
	if err != nil {
		r.logger.Warn(ctx, "failed to cache response", "partition", partition, "url", req.URL, "error", err)
	}
}
