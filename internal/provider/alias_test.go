package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriority(t *testing.T) {
	cached := []CachedModel{
		{Alias: "phi-4-mini", ModelID: "Phi-4-mini-instruct-generic-gpu"},
		{Alias: "phi-4-mini-reasoning", ModelID: "Phi-4-mini-reasoning-generic-gpu"},
		{Alias: "qwen2.5-0.5b", ModelID: "qwen2.5-0.5b-instruct-generic-gpu"},
	}

	tcs := map[string]struct {
		name string
		want string
	}{
		"exact alias wins over longer alias": {
			name: "phi-4-mini",
			want: "Phi-4-mini-instruct-generic-gpu",
		},
		"exact alias is case-insensitive": {
			name: "PHI-4-MINI",
			want: "Phi-4-mini-instruct-generic-gpu",
		},
		"identifier prefix": {
			name: "qwen2.5-0.5b-instruct",
			want: "qwen2.5-0.5b-instruct-generic-gpu",
		},
		"compound identifiers pass through": {
			name: "phi-4-mini:2",
			want: "phi-4-mini:2",
		},
		"unknown names pass through": {
			name: "mystral",
			want: "mystral",
		},
		"empty name passes through": {
			name: "",
			want: "",
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.name, cached))
		})
	}
}

func TestResolveWithoutCacheListing(t *testing.T) {
	assert.Equal(t, "phi-4-mini", Resolve("phi-4-mini", nil))
}

func TestParseCacheTable(t *testing.T) {
	out := "Models cached on device:\n" +
		"   Alias                         Device     Task               File Size    License      Model ID\n" +
		"💾 phi-4-mini                    GPU        chat-completion    3.72 GB      MIT          Phi-4-mini-instruct-generic-gpu\n" +
		"💾 qwen2.5-0.5b                  GPU        chat-completion    0.52 GB      apache-2.0   qwen2.5-0.5b-instruct-generic-gpu\n" +
		"                                 CPU        chat-completion    0.68 GB      apache-2.0   qwen2.5-0.5b-instruct-generic-cpu\n"

	models := parseCacheTable(out)
	require.Len(t, models, 3)

	assert.Equal(t, CachedModel{
		Alias:    "phi-4-mini",
		ModelID:  "Phi-4-mini-instruct-generic-gpu",
		Device:   "GPU",
		Task:     "chat-completion",
		FileSize: "3.72 GB",
	}, models[0])

	// a blank alias cell inherits the alias of the row above
	assert.Equal(t, "qwen2.5-0.5b", models[2].Alias)
	assert.Equal(t, "CPU", models[2].Device)
	assert.Equal(t, "qwen2.5-0.5b-instruct-generic-cpu", models[2].ModelID)
}

func TestParseCacheTableGarbage(t *testing.T) {
	assert.Empty(t, parseCacheTable("no models here\n"))
	assert.Empty(t, parseCacheTable(""))
}
