package azsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// Connection pool limits for the bulk-index client.
	maxTotalConns    = 20
	maxConnsPerRoute = 10

	// maxResponseBytes caps how much of an error response body is read
	// back for logging and error messages.
	maxResponseBytes = 64 * 1024
)

// Committer sends batches of add/delete operations to an Azure Search
// index. The pooled HTTP client is built lazily on the first Commit and
// reused across batches; any batch-fatal error tears it down so the next
// Commit starts from a clean transport.
//
// A Committer is safe for concurrent use, though the expected calling
// pattern is one batch at a time from the driving framework.
type Committer struct {
	cfg Config
	log *slog.Logger

	// custom, when set, replaces the lazily built pooled client. The
	// caller keeps ownership of its transport.
	custom *http.Client

	mu     sync.Mutex
	client *http.Client
	reqURL string
	enc    *batchEncoder
	closed bool
}

// Option configures a Committer.
type Option func(*Committer)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Committer) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the pooled HTTP client, mainly for tests and
// custom transports. Proxy and pooling settings from the configuration do
// not apply to a caller-supplied client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Committer) {
		c.custom = client
	}
}

// New creates a Committer for the given configuration. Construction never
// fails: configuration problems surface as ErrConfig from the first
// Commit, before any network call.
func New(cfg Config, opts ...Option) *Committer {
	c := &Committer{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the configuration the committer was built with.
func (c *Committer) Config() Config { return c.cfg }

// Commit sends one batch to the index. The returned bool reports whether
// a request was issued: a batch emptied by validation is skipped with a
// warning and returns (false, nil).
//
// Fatal errors (failed validation without tolerance, unsupported
// operations, transport failures, rejected responses without tolerance)
// discard the pooled client and are reported once; retry policy belongs
// to the caller. A rejected response arrives after the request was sent,
// so the batch's server-side effect is indeterminate.
func (c *Committer) Commit(ctx context.Context, batch Batch) (bool, error) {
	client, reqURL, enc, err := c.getClient()
	if err != nil {
		return false, err
	}

	c.log.Info("sending commit operations to azure search",
		slog.Int("operations", len(batch)))

	body, docs, err := enc.encode(batch)
	if err != nil {
		c.teardown()
		return false, err
	}
	if docs == 0 {
		c.log.Warn("no documents were valid, nothing committed")
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		c.teardown()
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)
	req.Header.Set("x-ms-client-request-id", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		c.teardown()
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.handleResponse(resp); err != nil {
		c.teardown()
		return false, err
	}
	c.log.Info("done sending commit operations to azure search",
		slog.Int("documents", docs))
	return true, nil
}

// Close releases the pooled client and marks the committer closed.
// Further commits return ErrClosed. Close is idempotent; closing an
// already-closed or never-used committer is a no-op.
func (c *Committer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.closeClientLocked()
	return nil
}

// getClient returns the pooled client, resolved request URL and encoder,
// building them on first use. Construction is a critical section so
// concurrent first commits share a single client.
func (c *Committer) getClient() (*http.Client, string, *batchEncoder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, "", nil, ErrClosed
	}
	if c.client != nil {
		return c.client, c.reqURL, c.enc, nil
	}

	if err := c.cfg.Validate(); err != nil {
		return nil, "", nil, err
	}
	enc, err := newBatchEncoder(c.cfg, c.log)
	if err != nil {
		return nil, "", nil, err
	}

	client := c.custom
	if client == nil {
		client = &http.Client{Transport: c.newTransport()}
	}
	c.client = client
	c.enc = enc
	c.reqURL = fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		url.PathEscape(c.cfg.IndexName),
		url.QueryEscape(c.cfg.apiVersion()))

	c.log.Debug("azure search client ready",
		slog.String("index", c.cfg.IndexName),
		slog.String("api_version", c.cfg.apiVersion()))
	return c.client, c.reqURL, c.enc, nil
}

// newTransport builds the pooled transport. Ambient auth defers proxy
// selection to the process environment; otherwise explicit proxy settings
// apply when configured. Timeouts are the transport's own connection and
// read timeouts, not modeled separately here.
func (c *Committer) newTransport() *http.Transport {
	t := &http.Transport{
		MaxIdleConns:        maxTotalConns,
		MaxConnsPerHost:     maxConnsPerRoute,
		MaxIdleConnsPerHost: maxConnsPerRoute,
		IdleConnTimeout:     90 * time.Second,
	}
	switch {
	case c.cfg.UseAmbientAuth:
		t.Proxy = http.ProxyFromEnvironment
	case c.cfg.Proxy.IsSet():
		t.Proxy = http.ProxyURL(c.cfg.Proxy.URL())
	}
	return t
}

// handleResponse inspects the HTTP status line and raw body. 200 and 201
// are success; anything else is an error, downgraded to a log line when
// response tolerance is on.
func (c *Committer) handleResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.log.Debug("azure search response", slog.String("status", resp.Status))
		return nil
	}
	if c.cfg.IgnoreResponseErrors {
		c.log.Error("azure search rejected the batch",
			slog.String("status", resp.Status),
			slog.String("response", string(body)))
		return nil
	}
	return fmt.Errorf("%w: invalid HTTP response %q: %s", ErrResponse, resp.Status, body)
}

// teardown discards the pooled client so the next commit rebuilds it.
func (c *Committer) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeClientLocked()
}

func (c *Committer) closeClientLocked() {
	if c.client == nil {
		return
	}
	c.client.CloseIdleConnections()
	c.client = nil
	c.enc = nil
	c.reqURL = ""
	c.log.Info("azure search http client closed")
}
