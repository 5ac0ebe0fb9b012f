package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Azure-style hosts take an api-key header and a deployment-scoped path
// instead of the bearer scheme at /v1.
var azureHostMarkers = []string{".openai.azure.com", ".cognitiveservices.azure.com"}

const azureAPIVersion = "2024-10-21"

// CloudOptions configure NewCloud. Endpoint and APIKey are required.
type CloudOptions struct {
	Endpoint string
	APIKey   string
	Model    string
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// CloudClient talks to a hosted OpenAI-compatible endpoint. The address is
// static: there is no discovery, and a successfully constructed client is
// considered available even when the deployment omits the models listing.
type CloudClient struct {
	http     *http.Client
	probe    *http.Client
	endpoint string
	apiKey   string
	model    string
	azure    bool
	ready    bool
	models   []string
	attempts int
	backoff  time.Duration
}

func NewCloud(opts CloudOptions) (*CloudClient, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("cloud provider requires an endpoint")
	}
	if opts.APIKey == "" {
		return nil, errors.New("cloud provider requires an api key")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "cloud endpoint")
	}
	if opts.Attempts < 1 {
		opts.Attempts = defaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.Timeout <= 0 {
		opts.Timeout = completionTimeout
	}
	return &CloudClient{
		http:     &http.Client{Timeout: opts.Timeout},
		probe:    &http.Client{Timeout: statusProbeTimeout},
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		model:    opts.Model,
		azure:    isAzureHost(u.Host),
		ready:    true,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
	}, nil
}

func isAzureHost(host string) bool {
	host = strings.ToLower(host)
	for _, marker := range azureHostMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}

// CheckStatus attempts a models listing. Deployments without a listing
// endpoint stay available; construction already established the client.
func (c *CloudClient) CheckStatus(ctx context.Context) (Status, error) {
	models, err := fetchModels(ctx, c.probe, c.endpoint+modelsPath, c.authHeader())
	if err == nil {
		c.models = models
	}
	return Status{
		Available:   c.ready,
		Endpoint:    c.endpoint,
		Models:      c.models,
		ActiveModel: c.model,
	}, nil
}

// Complete issues one chat completion with the same bounded retry as the
// local variant, minus rediscovery: the endpoint cannot move.
func (c *CloudClient) Complete(ctx context.Context, req Request) (Response, error) {
	if !c.ready {
		return Response{}, ErrUnavailable
	}
	body := chatRequest{
		Model:               c.model,
		Messages:            buildMessages(req),
		MaxCompletionTokens: tokenCap(req),
		Temperature:         temperature(req),
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
		}
		resp, err := postChat(ctx, c.http, c.completionURL(), c.authHeader(), body)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return Response{}, err
		}
		last = err
	}
	return Response{}, errors.Wrapf(last, "cloud completion failed after %d attempts", c.attempts)
}

func (c *CloudClient) completionURL() string {
	if c.azure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			c.endpoint, url.PathEscape(c.model), azureAPIVersion)
	}
	return c.endpoint + chatPath
}

func (c *CloudClient) authHeader() http.Header {
	h := http.Header{}
	if c.azure {
		h.Set("api-key", c.apiKey)
	} else {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	return h
}

func (c *CloudClient) Ready() bool      { return c.ready }
func (c *CloudClient) CloudMode() bool  { return true }
func (c *CloudClient) Model() string    { return c.model }
func (c *CloudClient) Endpoint() string { return c.endpoint }

func (c *CloudClient) Close() error {
	c.http.CloseIdleConnections()
	c.probe.CloseIdleConnections()
	return nil
}
