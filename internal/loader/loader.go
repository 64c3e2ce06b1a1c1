// Package loader fetches directory payloads from the directory API and
// substitutes mock data whenever the API fails or misbehaves.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/dirpage/internal/cache"
	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/mock"
)

// maxBodyBytes bounds how much of an API response is read.
const maxBodyBytes = 8 << 20

// Source records where a loaded payload came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceMock  Source = "mock"
)

// Result is the outcome of Load. Err holds the masked fetch error when
// Source is SourceMock.
type Result struct {
	Payload *directory.Payload
	Source  Source
	Err     error
}

// Options configures a Loader. Zero values get defaults.
type Options struct {
	APIBase  string
	Client   *http.Client
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// Loader loads directory payloads. It is safe for concurrent use; concurrent
// loads of one key share a single upstream request.
type Loader struct {
	apiBase  string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
	group    singleflight.Group
}

// New creates a Loader from opts.
func New(opts Options) *Loader {
	l := &Loader{
		apiBase:  strings.TrimRight(opts.APIBase, "/"),
		client:   opts.Client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: opts.Timeout}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Endpoint returns the API URL for key.
func (l *Loader) Endpoint(key string) string {
	return l.apiBase + "/directory/" + url.PathEscape(key)
}

// Load returns the payload for key. Fetch failures are logged and replaced by
// mock data; the returned error is non-nil only for an empty key or when ctx
// is done.
func (l *Loader) Load(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, errors.New("empty directory key")
	}

	if l.cache != nil {
		p, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			l.logger.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return Result{Payload: p, Source: SourceCache}, nil
		}
	}

	// The shared request outlives any single caller; the client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	v, _, _ := l.group.Do(key, func() (any, error) {
		return l.loadUncached(shared, key), nil
	})
	res := v.(Result)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (l *Loader) loadUncached(ctx context.Context, key string) Result {
	l.logger.Debug("Loading directory", zap.String("key", key), zap.String("url", l.Endpoint(key)))

	p, err := l.Fetch(ctx, key)
	if err != nil {
		l.logger.Warn("API failed, using mock data", zap.String("key", key), zap.Error(err))
		m := mock.For(key, l.now())
		return Result{Payload: m, Source: SourceMock, Err: err}
	}

	l.logger.Info("Directory loaded", zap.String("key", key), zap.Int("listings", len(p.Listings)))
	if l.cache != nil {
		if err := l.cache.Set(ctx, key, p, l.cacheTTL); err != nil {
			l.logger.Warn("Cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return Result{Payload: p, Source: SourceLive}
}

// Fetch performs one API request for key without any fallback. Errors are
// *HTTPError, *MalformedResponseError or *NetworkError.
func (l *Loader) Fetch(ctx context.Context, key string) (*directory.Payload, error) {
	endpoint := l.Endpoint(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Cause: err}
	}

	return decodePayload(body, key)
}

// decodePayload parses an API body, rejecting markup documents before any
// JSON parsing is attempted.
func decodePayload(body []byte, key string) (*directory.Payload, error) {
	text := strings.ToLower(strings.TrimSpace(string(body)))
	if strings.HasPrefix(text, "<!doctype") || strings.HasPrefix(text, "<html") {
		return nil, &MalformedResponseError{Reason: "markup document instead of JSON"}
	}

	var p directory.Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON", Cause: err}
	}
	if p.Listings == nil {
		return nil, &MalformedResponseError{Reason: "missing listings"}
	}

	p.Normalize(key)
	return &p, nil
}
