package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudRequiresEndpointAndKey(t *testing.T) {
	_, err := NewCloud(CloudOptions{APIKey: "k"})
	assert.Error(t, err)
	_, err = NewCloud(CloudOptions{Endpoint: "https://api.openai.com"})
	assert.Error(t, err)
}

func TestCloudReadyFromConstruction(t *testing.T) {
	c, err := NewCloud(CloudOptions{Endpoint: "https://api.openai.com", APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.True(t, c.Ready())
	assert.True(t, c.CloudMode())
	assert.Equal(t, "gpt-4o", c.Model())
}

func TestAzureHostDetection(t *testing.T) {
	tcs := map[string]struct {
		endpoint string
		azure    bool
	}{
		"azure openai":          {endpoint: "https://myres.openai.azure.com", azure: true},
		"cognitive services":    {endpoint: "https://myres.cognitiveservices.azure.com/", azure: true},
		"plain openai":          {endpoint: "https://api.openai.com", azure: false},
		"self-hosted candidate": {endpoint: "http://inference.internal:8000", azure: false},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			c, err := NewCloud(CloudOptions{Endpoint: tc.endpoint, APIKey: "k", Model: "gpt-4o"})
			require.NoError(t, err)
			assert.Equal(t, tc.azure, c.azure)
		})
	}
}

func TestAzureRequestShape(t *testing.T) {
	c, err := NewCloud(CloudOptions{
		Endpoint: "https://myres.openai.azure.com",
		APIKey:   "secret",
		Model:    "gpt-4o-deploy",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"https://myres.openai.azure.com/openai/deployments/gpt-4o-deploy/chat/completions?api-version="+azureAPIVersion,
		c.completionURL())
	assert.Equal(t, "secret", c.authHeader().Get("api-key"))
	assert.Empty(t, c.authHeader().Get("Authorization"))
}

func TestCloudCompleteSendsBearerAndCompletionTokens(t *testing.T) {
	var (
		got  map[string]any
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "cloud says hi"}}},
		})
	}))
	defer srv.Close()

	c, err := NewCloud(CloudOptions{Endpoint: srv.URL, APIKey: "k-123", Model: "gpt-4o"})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), Request{Prompt: "hello", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "cloud says hi", resp.Content)
	assert.Equal(t, "Bearer k-123", auth)
	assert.EqualValues(t, 256, got["max_completion_tokens"])
	assert.NotContains(t, got, "max_tokens")
	assert.Equal(t, "gpt-4o", got["model"])
}

func TestCloudCheckStatusWithoutListing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := NewCloud(CloudOptions{Endpoint: srv.URL, APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)

	st, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.Empty(t, st.Models)
	assert.Equal(t, "gpt-4o", st.ActiveModel)
}
