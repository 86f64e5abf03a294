package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/sethvargo/go-retry"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPClient implements Client against the story REST API.
// Safe for concurrent use; the token may be refreshed at any time.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the given API base URL
// (e.g. "https://story-api.example.dev/v1").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

// SetToken installs or refreshes the bearer token.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiResponse is the common envelope of the story API. The positive and
// negative paths share one shape: error=true plus a human-readable message
// signals failure.
type apiResponse struct {
	Error       bool         `json:"error"`
	Message     string       `json:"message"`
	ListStory   []storyDTO   `json:"listStory"`
	Story       *storyDTO    `json:"story"`
	LoginResult *loginResult `json:"loginResult"`
}

type loginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type storyDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photoUrl"`
	CreatedAt   string   `json:"createdAt"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

func (d *storyDTO) toModel() (models.Story, error) {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		return models.Story{}, fmt.Errorf("invalid createdAt %q: %w", d.CreatedAt, err)
	}
	return models.Story{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PhotoURL:    d.PhotoURL,
		Lat:         d.Lat,
		Lon:         d.Lon,
		CreatedAt:   createdAt,
	}, nil
}

// Login exchanges credentials for a bearer token and installs it on the client.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	parsed, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: %s", common.ErrUnauthorized, parsed.Message)
	}
	if status < 200 || status >= 300 || parsed.Error {
		return "", fmt.Errorf("%w: login failed: %s", common.ErrTransport, parsed.Message)
	}
	if parsed.LoginResult == nil || parsed.LoginResult.Token == "" {
		return "", fmt.Errorf("%w: login response missing token", common.ErrTransport)
	}

	c.SetToken(parsed.LoginResult.Token)
	return parsed.LoginResult.Token, nil
}

// Ping probes reachability with a cheap request. An HTTP answer of any status
// means the server is reachable; only transport-level failures return errors.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stories?size=1", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrTransport, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

// ListStories fetches the canonical story list. The request is idempotent, so
// transient transport failures are retried with a short fibonacci backoff.
func (c *HTTPClient) ListStories(ctx context.Context) ([]models.Story, error) {
	var parsed *apiResponse

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stories", nil)
		if err != nil {
			return err
		}
		c.authorize(req)

		p, status, err := c.do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", common.ErrUnauthorized, p.Message)
		}
		if status < 200 || status >= 300 || p.Error {
			return fmt.Errorf("%w: list stories failed: %s", common.ErrTransport, p.Message)
		}
		parsed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]models.Story, 0, len(parsed.ListStory))
	for i := range parsed.ListStory {
		s, err := parsed.ListStory[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrTransport, err)
		}
		result = append(result, s)
	}
	return result, nil
}

// CreateStory submits one story as a multipart POST. Exactly one request is
// made per call; retry policy belongs to the caller (the sync coordinator
// attempts each mutation once per pass).
func (c *HTTPClient) CreateStory(ctx context.Context, p models.StoryPayload, idempotencyKey string) (*models.Story, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", p.Description); err != nil {
		return nil, err
	}
	if p.Lat != nil && p.Lon != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(*p.Lat, 'f', -1, 64)); err != nil {
			return nil, err
		}
		if err := w.WriteField("lon", strconv.FormatFloat(*p.Lon, 'f', -1, 64)); err != nil {
			return nil, err
		}
	}
	if len(p.Photo) > 0 {
		name := p.PhotoName
		if name == "" {
			name = "photo.jpg"
		}
		part, err := w.CreateFormFile("photo", name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(p.Photo); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stories", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(common.IdempotencyKeyHeaderName, idempotencyKey)
	c.authorize(req)

	parsed, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", common.ErrUnauthorized, parsed.Message)
	}
	if status < 200 || status >= 300 || parsed.Error {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		return nil, fmt.Errorf("%w: create story failed: %s", common.ErrTransport, msg)
	}

	if parsed.Story == nil {
		return nil, nil
	}
	s, err := parsed.Story.toModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTransport, err)
	}
	return &s, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if token := c.bearer(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
}

// do executes the request and decodes the API envelope. A body that is not
// valid JSON is tolerated for non-2xx statuses so the status itself can drive
// the error mapping.
func (c *HTTPClient) do(req *http.Request) (*apiResponse, int, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading response: %w", common.ErrTransport, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, 0, fmt.Errorf("%w: invalid response body: %w", common.ErrTransport, err)
		}
		parsed = apiResponse{Error: true, Message: http.StatusText(resp.StatusCode)}
	}
	return &parsed, resp.StatusCode, nil
}
