package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEndpoint(t *testing.T) {
	tcs := map[string]struct {
		out    string
		want   string
		wantOK bool
	}{
		"status path trimmed": {
			out:    "🟢 Model management service is running on http://localhost:5273/openai/status",
			want:   "http://localhost:5273",
			wantOK: true,
		},
		"trailing punctuation trimmed": {
			out:    "Service is running on http://127.0.0.1:8081.",
			want:   "http://127.0.0.1:8081",
			wantOK: true,
		},
		"marker without url": {
			out:    "service is running on port five",
			wantOK: false,
		},
		"url before marker ignored": {
			out:    "docs at https://example.com\nnothing else",
			wantOK: false,
		},
		"empty output": {
			out:    "",
			wantOK: false,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, ok := extractEndpoint(tc.out)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestDiscoverRunsStatusCommand(t *testing.T) {
	d := Discovery{StatusCommand: []string{
		"echo", "Model management service is running on http://localhost:9955/openai/status",
	}}
	ep, ok := d.Discover(context.Background())
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9955", ep)
}

func TestDiscoverAbsorbsCommandFailure(t *testing.T) {
	d := Discovery{StatusCommand: []string{"gangplank-no-such-binary"}}
	_, ok := d.Discover(context.Background())
	assert.False(t, ok)
}

func TestCachedModelsRunsCacheCommand(t *testing.T) {
	table := "   Alias        Device     Task               File Size    License   Model ID\n" +
		"💾 phi-4-mini   GPU        chat-completion    3.72 GB      MIT       Phi-4-mini-instruct-generic-gpu\n"
	d := Discovery{CacheCommand: []string{"echo", table}}
	models := d.CachedModels(context.Background())
	require.Len(t, models, 1)
	assert.Equal(t, "phi-4-mini", models[0].Alias)
	assert.Equal(t, "Phi-4-mini-instruct-generic-gpu", models[0].ModelID)
}

func TestCachedModelsAbsorbsCommandFailure(t *testing.T) {
	d := Discovery{CacheCommand: []string{"gangplank-no-such-binary"}}
	assert.Empty(t, d.CachedModels(context.Background()))
}
