package worker

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/DaffaAhmadSM/storymap-cli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorker(t *testing.T, manifest []string, notify Notifier) (*Worker, *fakeFetcher) {
	t.Helper()
	router, fetch, cache := setupRouter(t)
	w := &Worker{
		router:   router,
		cache:    cache,
		fetch:    fetch,
		parts:    DefaultPartitions("v1"),
		manifest: manifest,
		notify:   notify,
		logger:   logging.NewNopLogger(),
	}
	return w, fetch
}

func TestOnInstall_WarmsManifest(t *testing.T) {
	manifest := []string{"/index.html", "/assets/app.js"}
	w, fetch := setupWorker(t, manifest, nil)
	ctx := context.Background()
	for _, u := range manifest {
		fetch.responses["GET "+u] = &Response{Status: http.StatusOK, ContentType: "text/plain", Body: []byte("asset " + u)}
	}

	require.NoError(t, w.OnInstall(ctx))

	got, err := w.cache.Get(ctx, w.parts.Static, "GET /index.html")
	require.NoError(t, err)
	assert.Equal(t, "asset /index.html", string(got.Body))
}

func TestOnInstall_SkipsFailedAssets(t *testing.T) {
	manifest := []string{"/index.html", "/assets/missing.css"}
	w, fetch := setupWorker(t, manifest, nil)
	ctx := context.Background()
	fetch.responses["GET /index.html"] = &Response{Status: http.StatusOK, ContentType: "text/html", Body: []byte("shell")}
	// /assets/missing.css falls through to the fetcher's 404 default

	require.NoError(t, w.OnInstall(ctx), "one missing asset must not block installation")

	_, err := w.cache.Get(ctx, w.parts.Static, "GET /index.html")
	require.NoError(t, err)
	_, err = w.cache.Get(ctx, w.parts.Static, "GET /assets/missing.css")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOnActivate_PurgesStalePartitions(t *testing.T) {
	w, _ := setupWorker(t, nil, nil)
	ctx := context.Background()

	stale := entryForTest("storymap-static-v0", "GET /index.html")
	current := entryForTest(w.parts.Static, "GET /index.html")
	require.NoError(t, w.cache.Put(ctx, stale))
	require.NoError(t, w.cache.Put(ctx, current))

	require.NoError(t, w.OnActivate(ctx))

	names, err := w.cache.Partitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{w.parts.Static}, names)
}

func TestOnPush_DecodesPayload(t *testing.T) {
	var got Notification
	w, _ := setupWorker(t, nil, func(n Notification) { got = n })

	w.OnPush(context.Background(), []byte(`{"title":"New story","options":{"body":"Ana posted a story"}}`))

	assert.Equal(t, "New story", got.Title)
	assert.Equal(t, "Ana posted a story", got.Body)
}

func TestOnPush_DefaultsOnGarbage(t *testing.T) {
	var got Notification
	w, _ := setupWorker(t, nil, func(n Notification) { got = n })

	w.OnPush(context.Background(), []byte("not json"))

	assert.Equal(t, defaultNotificationTitle, got.Title)
	assert.Equal(t, defaultNotificationBody, got.Body)
}

func TestRuntime_DispatchesMessages(t *testing.T) {
	w, fetch := setupWorker(t, []string{"/index.html"}, nil)
	fetch.responses["GET /index.html"] = &Response{Status: http.StatusOK, ContentType: "text/html", Body: []byte("shell")}
	fetch.responses["GET https://story-api.test/v1/stories"] = jsonResp(`{"error":false,"listStory":[]}`)

	rt := NewRuntime(w, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.Run(ctx)

	require.NoError(t, rt.Install(ctx))
	require.NoError(t, rt.Activate(ctx))

	resp, err := rt.Request(ctx, Request{URL: "https://story-api.test/v1/stories"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	require.NoError(t, rt.Push(ctx, []byte(`{"title":"hi"}`)))
}

func TestRuntime_SendHonorsContext(t *testing.T) {
	w, _ := setupWorker(t, nil, nil)
	rt := NewRuntime(w, 0)
	// no Run loop: the send must give up when the context expires

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := rt.Activate(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func entryForTest(partition, key string) *models.CacheEntry {
	return &models.CacheEntry{Partition: partition, RequestKey: key, Status: 200, ContentType: "text/html", Body: []byte("x"), StoredAt: time.Now().UTC()}
}
