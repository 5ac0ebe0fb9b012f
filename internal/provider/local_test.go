package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietDiscovery never finds anything and never shells out to a real CLI.
var quietDiscovery = Discovery{
	StatusCommand: []string{"gangplank-no-such-binary"},
	CacheCommand:  []string{"gangplank-no-such-binary"},
	Timeout:       time.Second,
}

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/models":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"id": "Phi-4-mini-instruct-generic-gpu"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"content": content}}},
				"usage":   map[string]int{"prompt_tokens": 7, "completion_tokens": 5, "total_tokens": 12},
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestLocalCheckStatusListsAndResolves(t *testing.T) {
	srv := httptest.NewServer(completionHandler(t, "ok"))
	defer srv.Close()

	table := "   Alias                  Device   Task              File Size   License   Model ID\n" +
		"💾 phi-4-mini             GPU      chat-completion   3.72 GB     MIT       Phi-4-mini-instruct-generic-gpu\n"
	c := NewLocal(LocalOptions{
		Endpoint: srv.URL,
		Model:    "phi-4-mini",
		Discovery: Discovery{
			StatusCommand: []string{"gangplank-no-such-binary"},
			CacheCommand:  []string{"echo", table},
		},
	})

	st, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.True(t, c.Ready())
	assert.False(t, c.CloudMode())
	assert.Equal(t, srv.URL, c.Endpoint())
	assert.Equal(t, []string{"Phi-4-mini-instruct-generic-gpu"}, st.Models)
	assert.Equal(t, "Phi-4-mini-instruct-generic-gpu", c.Model())
	require.Len(t, st.CachedModels, 1)
}

func TestLocalCompleteBeforeStatusCheck(t *testing.T) {
	c := NewLocal(LocalOptions{Endpoint: "http://localhost:1", Discovery: quietDiscovery})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLocalCheckStatusUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewLocal(LocalOptions{Endpoint: url, Discovery: quietDiscovery})
	st, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Available)
	assert.False(t, c.Ready())
}

func TestLocalCheckStatusFallsBackToStatusProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/openai/status" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewLocal(LocalOptions{Endpoint: srv.URL, Model: "phi-4-mini", Discovery: quietDiscovery})
	st, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.True(t, c.Ready())
	assert.Empty(t, st.Models)
}

func TestLocalCompleteRetriesConnectionErrors(t *testing.T) {
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/models" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "m"}}})
			return
		}
		atomic.AddInt32(&posts, 1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	backoff := 30 * time.Millisecond
	c := NewLocal(LocalOptions{Endpoint: srv.URL, Model: "m", Discovery: quietDiscovery, Backoff: backoff})
	_, err := c.CheckStatus(context.Background())
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Complete(context.Background(), Request{Prompt: "hi"})
	elapsed := time.Since(start)

	require.Error(t, err)
	var ce *ConnectionError
	assert.ErrorAs(t, err, &ce)
	assert.EqualValues(t, 3, atomic.LoadInt32(&posts))
	assert.GreaterOrEqual(t, elapsed, 2*backoff)
	// a failed completion must not flip availability off
	assert.True(t, c.Ready())
}

func TestLocalCompleteRediscoversBetweenAttempts(t *testing.T) {
	var broken int32
	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/models" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "m"}}})
			return
		}
		atomic.AddInt32(&broken, 1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srvA.Close()

	srvB := httptest.NewServer(completionHandler(t, "moved"))
	defer srvB.Close()

	t.Setenv(localEndpointEnv, srvA.URL)
	c := NewLocal(LocalOptions{
		Model:   "m",
		Backoff: 10 * time.Millisecond,
		Discovery: Discovery{
			StatusCommand: []string{"echo", "service is running on " + srvB.URL + "/openai/status"},
			CacheCommand:  []string{"gangplank-no-such-binary"},
		},
	})

	_, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, srvA.URL, c.Endpoint())

	resp, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "moved", resp.Content)
	assert.Equal(t, srvB.URL, c.Endpoint())
	assert.EqualValues(t, 1, atomic.LoadInt32(&broken))
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestLocalCompleteUpstreamErrorNotRetried(t *testing.T) {
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/models" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "m"}}})
			return
		}
		atomic.AddInt32(&posts, 1)
		http.Error(w, `{"error":"model not loaded"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewLocal(LocalOptions{Endpoint: srv.URL, Model: "m", Discovery: quietDiscovery, Backoff: time.Millisecond})
	_, err := c.CheckStatus(context.Background())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&posts))
}

func TestLocalRequestBodyShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/models" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "m"}}})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	c := NewLocal(LocalOptions{Endpoint: srv.URL, Model: "m", Discovery: quietDiscovery})
	_, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), Request{
		Prompt:       "list tasks",
		SystemPrompt: "you are terse",
		MaxTokens:    512,
		Temperature:  0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "m", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	assert.NotContains(t, got, "max_completion_tokens")
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
}
