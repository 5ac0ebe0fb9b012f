package provider

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultLocalEndpoint = "http://localhost:5273"
	localEndpointEnv     = "GANGPLANK_LOCAL_ENDPOINT"

	defaultAttempts    = 3
	defaultBackoff     = 5 * time.Second
	completionTimeout  = 120 * time.Second
	statusProbeTimeout = 10 * time.Second
)

// LocalOptions configure NewLocal. Zero values select the defaults above.
type LocalOptions struct {
	// Endpoint pins the service address; discovery is skipped entirely.
	Endpoint string
	// Model is the alias or full identifier to run.
	Model     string
	Discovery Discovery
	Attempts  int
	Backoff   time.Duration
	Timeout   time.Duration
}

// LocalClient talks to an auto-discovered local service speaking the
// OpenAI-style protocol. The zero endpoint is resolved at CheckStatus time:
// explicit pin, then environment, then discovery, then the default port.
type LocalClient struct {
	http     *http.Client
	probe    *http.Client
	disc     Discovery
	pin      string
	endpoint string
	model    string
	resolved string
	models   []string
	cached   []CachedModel
	ready    bool
	attempts int
	backoff  time.Duration
	timeout  time.Duration
}

func NewLocal(opts LocalOptions) *LocalClient {
	if opts.Attempts < 1 {
		opts.Attempts = defaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.Timeout <= 0 {
		opts.Timeout = completionTimeout
	}
	return &LocalClient{
		http:     &http.Client{Timeout: opts.Timeout},
		probe:    &http.Client{Timeout: statusProbeTimeout},
		disc:     opts.Discovery,
		pin:      opts.Endpoint,
		model:    opts.Model,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		timeout:  opts.Timeout,
	}
}

func (c *LocalClient) resolveEndpoint(ctx context.Context) string {
	if c.pin != "" {
		return c.pin
	}
	if v := os.Getenv(localEndpointEnv); v != "" {
		return v
	}
	if ep, ok := c.disc.Discover(ctx); ok {
		return ep
	}
	return defaultLocalEndpoint
}

// CheckStatus resolves the endpoint, lists models, and resolves the
// configured alias against the cache listing. A failed listing triggers one
// rediscovery and one more listing attempt, then a plain liveness probe;
// only when all of those fail is the service reported unavailable.
func (c *LocalClient) CheckStatus(ctx context.Context) (Status, error) {
	c.endpoint = c.resolveEndpoint(ctx)
	models, err := fetchModels(ctx, c.probe, c.endpoint+modelsPath, nil)
	if err != nil && c.pin == "" {
		if ep, ok := c.disc.Discover(ctx); ok && ep != c.endpoint {
			c.endpoint = ep
			models, err = fetchModels(ctx, c.probe, c.endpoint+modelsPath, nil)
		}
	}
	if err != nil {
		// the management surface answers before the OpenAI surface is up
		if c.statusProbe(ctx) != nil {
			return Status{Endpoint: c.endpoint}, nil
		}
		models = nil
	}
	c.models = models
	c.cached = c.disc.CachedModels(ctx)
	c.resolved = Resolve(c.model, c.cached)
	c.ready = true
	return Status{
		Available:    true,
		Endpoint:     c.endpoint,
		Models:       c.models,
		ActiveModel:  c.resolved,
		CachedModels: c.cached,
	}, nil
}

func (c *LocalClient) statusProbe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/openai/status", nil)
	if err != nil {
		return err
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: readErrBody(resp.Body)}
	}
	return nil
}

// Complete issues one chat completion. Connection-class failures are
// retried after a fixed backoff, with rediscovery and a fresh transport
// between attempts; anything else propagates immediately.
func (c *LocalClient) Complete(ctx context.Context, req Request) (Response, error) {
	if !c.ready {
		return Response{}, ErrUnavailable
	}
	body := chatRequest{
		Model:       c.resolved,
		Messages:    buildMessages(req),
		MaxTokens:   tokenCap(req),
		Temperature: temperature(req),
	}
	var last error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			default:
			}
			time.Sleep(c.backoff)
			c.rediscover(ctx)
		}
		resp, err := postChat(ctx, c.http, c.endpoint+chatPath, nil, body)
		if err == nil {
			c.ready = true
			return resp, nil
		}
		if !retryable(err) {
			return Response{}, err
		}
		last = err
	}
	return Response{}, errors.Wrapf(last, "local completion failed after %d attempts", c.attempts)
}

// rediscover refreshes the endpoint and replaces the transport before a
// retry; the service may have moved ports between attempts. A pinned
// endpoint is kept as-is.
func (c *LocalClient) rediscover(ctx context.Context) {
	if c.pin == "" {
		if ep, ok := c.disc.Discover(ctx); ok {
			c.endpoint = ep
		}
	}
	c.http.CloseIdleConnections()
	c.http = &http.Client{Timeout: c.timeout}
}

func (c *LocalClient) Ready() bool     { return c.ready }
func (c *LocalClient) CloudMode() bool { return false }

func (c *LocalClient) Model() string {
	if c.resolved != "" {
		return c.resolved
	}
	return c.model
}

func (c *LocalClient) Endpoint() string { return c.endpoint }

func (c *LocalClient) Close() error {
	c.http.CloseIdleConnections()
	c.probe.CloseIdleConnections()
	return nil
}
