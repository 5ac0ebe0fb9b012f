package provider

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Discovery locates the local inference service by shelling out to its
// management CLI. Both lookups are best-effort: any execution problem,
// timeout included, yields an empty result rather than an error. Retry
// policy lives in the client, not here.
type Discovery struct {
	// StatusCommand prints a line containing the service URL after the
	// marker phrase. Defaults to the foundry CLI.
	StatusCommand []string
	// CacheCommand prints the table of locally cached models.
	CacheCommand []string
	Timeout      time.Duration
}

const (
	statusMarker     = "is running on"
	discoveryTimeout = 10 * time.Second
)

var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// Discover runs the status command and extracts the service base URL from
// its output.
func (d Discovery) Discover(ctx context.Context) (string, bool) {
	cmd := d.StatusCommand
	if len(cmd) == 0 {
		cmd = []string{"foundry", "service", "status"}
	}
	out, err := d.run(ctx, cmd)
	if err != nil && out == "" {
		return "", false
	}
	return extractEndpoint(out)
}

// CachedModels runs the cache listing command and parses its table. An
// empty slice means the listing was unavailable or empty.
func (d Discovery) CachedModels(ctx context.Context) []CachedModel {
	cmd := d.CacheCommand
	if len(cmd) == 0 {
		cmd = []string{"foundry", "cache", "list"}
	}
	out, err := d.run(ctx, cmd)
	if err != nil && out == "" {
		return nil
	}
	return parseCacheTable(out)
}

func (d Discovery) run(ctx context.Context, cmd []string) (string, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = discoveryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var buf bytes.Buffer
	c := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	c.Stdout = &buf
	c.Stderr = &buf
	err := c.Run()
	return buf.String(), err
}

// extractEndpoint finds the first URL after the marker phrase and trims the
// status path so the result is a usable base URL.
func extractEndpoint(out string) (string, bool) {
	idx := strings.Index(strings.ToLower(out), statusMarker)
	if idx < 0 {
		return "", false
	}
	m := urlPattern.FindString(out[idx+len(statusMarker):])
	if m == "" {
		return "", false
	}
	m = strings.TrimRight(m, ".,;!")
	m = strings.TrimSuffix(m, "/openai/status")
	m = strings.TrimSuffix(m, "/")
	return m, true
}
