// Package provider implements the inference backends the pipeline drives:
// an auto-discovered local service, a static cloud endpoint, and an agentic
// session process, all behind a single Client contract selected once at
// construction time.
package provider

import "context"

// Client is the uniform contract over the three backend variants. A client
// instance belongs to exactly one pipeline run: retry and rediscovery mutate
// it in place.
type Client interface {
	// CheckStatus probes the backend once and returns an availability
	// snapshot. Unavailability is reported in the snapshot, not as an error.
	CheckStatus(ctx context.Context) (Status, error)
	// Complete issues one inference request and waits for the full reply.
	Complete(ctx context.Context, req Request) (Response, error)
	// Ready reports whether a status check or completion has succeeded.
	Ready() bool
	// CloudMode reports whether this client talks to a hosted endpoint.
	CloudMode() bool
	Model() string
	Endpoint() string
	Close() error
}

// Status is the snapshot produced by CheckStatus, taken once per run.
type Status struct {
	Available    bool
	Endpoint     string
	Models       []string
	ActiveModel  string
	CachedModels []CachedModel
}

// CachedModel is one row of the local service's cache listing.
type CachedModel struct {
	Alias    string
	ModelID  string
	Device   string
	Task     string
	FileSize string
}

// Request carries one prompt. Zero MaxTokens and Temperature select the
// package defaults.
type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

// Response is the provider's reply. Usage is nil when the backend does not
// report token accounting.
type Response struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.7
)

func tokenCap(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

func temperature(req Request) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return defaultTemperature
}
