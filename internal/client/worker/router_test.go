package worker

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/cachedata"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeFetcher serves canned responses per request key and can be flipped
// offline, after which every fetch fails.
type fakeFetcher struct {
	responses map[string]*Response
	offline   bool
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, r Request) (*Response, error) {
	f.calls = append(f.calls, r.Key())
	if f.offline {
		return nil, errors.New("dial tcp: network is unreachable")
	}
	if resp, ok := f.responses[r.Key()]; ok {
		return resp, nil
	}
	return &Response{Status: http.StatusNotFound, ContentType: "text/plain", Body: []byte("not found")}, nil
}

func setupRouter(t *testing.T) (*Router, *fakeFetcher, cachedata.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cache_entries (
  partition TEXT NOT NULL,
  request_key TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 200,
  content_type TEXT NOT NULL DEFAULT '',
  body BLOB,
  stored_at TEXT NOT NULL,
  PRIMARY KEY (partition, request_key)
);
`)
	require.NoError(t, err)

	cache := cachedata.NewSQLiteRepository(db)
	fetch := &fakeFetcher{responses: map[string]*Response{}}
	router := NewRouter(cache, fetch, DefaultPartitions("v1"), logging.NewNopLogger())
	return router, fetch, cache
}

func jsonResp(body string) *Response {
	return &Response{Status: http.StatusOK, ContentType: "application/json", Body: []byte(body)}
}

func TestHandleAPI_NetworkFirst(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	ctx := context.Background()
	req := Request{URL: "https://story-api.test/v1/stories"}
	fetch.responses[req.Key()] = jsonResp(`{"error":false,"listStory":[{"id":"s1"}]}`)

	resp, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, `{"error":false,"listStory":[{"id":"s1"}]}`, string(resp.Body))
}

func TestHandleAPI_FallsBackToCacheWhenOffline(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	ctx := context.Background()
	req := Request{URL: "https://story-api.test/v1/stories"}
	fetch.responses[req.Key()] = jsonResp(`{"error":false,"listStory":[{"id":"s1"}]}`)

	// a successful pass populates the api partition
	_, err := router.Handle(ctx, req)
	require.NoError(t, err)

	fetch.offline = true
	resp, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.False(t, resp.Offline, "a cached response must win over the stand-in")
	assert.Equal(t, `{"error":false,"listStory":[{"id":"s1"}]}`, string(resp.Body))
}

func TestHandleAPI_StandInOnlyWhenNothingCached(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	fetch.offline = true

	resp, err := router.Handle(context.Background(), Request{URL: "https://story-api.test/v1/stories"})
	require.NoError(t, err)
	assert.True(t, resp.Offline)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"error":true,"message":"You are offline. Showing cached data.","listStory":[]}`, string(resp.Body))
}

func TestHandleAPI_ErrorStatusNotCached(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	ctx := context.Background()
	req := Request{URL: "https://story-api.test/v1/stories"}
	fetch.responses[req.Key()] = &Response{Status: http.StatusInternalServerError, ContentType: "application/json", Body: []byte(`{"error":true}`)}

	_, err := router.Handle(ctx, req)
	require.NoError(t, err)

	// going offline after a 500 must yield the stand-in, not the 500 body
	fetch.offline = true
	resp, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.Offline)
}

func TestHandleImage_CacheFirst(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	ctx := context.Background()
	req := Request{URL: "https://cdn.test/photos/s1.jpg"}
	fetch.responses[req.Key()] = &Response{Status: http.StatusOK, ContentType: "image/jpeg", Body: []byte("jpeg-bytes")}

	first, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "jpeg-bytes", string(second.Body))
	assert.Len(t, fetch.calls, 1, "a cached image must not hit the network again")
}

func TestHandleImage_PlaceholderWhenUnfetchable(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	fetch.offline = true

	resp, err := router.Handle(context.Background(), Request{URL: "https://cdn.test/photos/s1.jpg"})
	require.NoError(t, err)
	assert.True(t, resp.Offline)
	assert.Equal(t, "image/svg+xml", resp.ContentType)
	assert.Contains(t, string(resp.Body), "<svg")
}

func TestHandleStatic_NavigationFallsBackToShell(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	ctx := context.Background()

	// the shell lands in the static partition at install time
	shell := Request{URL: "/index.html"}
	router.store(ctx, router.parts.Static, shell, &Response{Status: http.StatusOK, ContentType: "text/html", Body: []byte("<html>shell</html>")})

	fetch.offline = true
	resp, err := router.Handle(ctx, Request{URL: "https://app.test/pages/about", Navigate: true})
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "<html>shell</html>", string(resp.Body))
}

func TestHandleStatic_OfflineWithoutShell(t *testing.T) {
	router, fetch, _ := setupRouter(t)
	fetch.offline = true

	resp, err := router.Handle(context.Background(), Request{URL: "https://app.test/assets/app.js"})
	require.NoError(t, err)
	assert.True(t, resp.Offline)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
}

func TestHandleBypass_GoesStraightToNetwork(t *testing.T) {
	router, fetch, cache := setupRouter(t)
	ctx := context.Background()
	req := Request{URL: "https://app.test/assets/app.js", Transient: true}
	fetch.responses[req.Key()] = &Response{Status: http.StatusOK, ContentType: "text/javascript", Body: []byte("js")}

	resp, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.FromCache)

	names, err := cache.Partitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, names, "bypass requests must never be cached")
}
