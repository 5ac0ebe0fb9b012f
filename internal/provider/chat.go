package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// OpenAI-style chat-completion wire shapes shared by the local and cloud
// variants. The token-limit field name differs between the two: local
// services take max_tokens, cloud deployments take max_completion_tokens.

const (
	chatPath   = "/v1/chat/completions"
	modelsPath = "/v1/models"

	// upstream bodies are truncated before they end up in error messages
	maxErrBody = 2048
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func buildMessages(req Request) []chatMessage {
	msgs := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})
	return msgs
}

// postChat sends one completion request and decodes the first choice.
// Transport failures come back as ConnectionError, HTTP-level rejections as
// UpstreamError.
func postChat(ctx context.Context, hc *http.Client, url string, header http.Header, body chatRequest) (Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return Response{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Response{}, classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &UpstreamError{StatusCode: resp.StatusCode, Body: readErrBody(resp.Body)}
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, classify(err)
	}
	if len(out.Choices) == 0 {
		return Response{}, &UpstreamError{StatusCode: resp.StatusCode, Body: "response contained no choices"}
	}
	r := Response{Content: out.Choices[0].Message.Content}
	if out.Usage != nil {
		r.Usage = &Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		}
	}
	return r, nil
}

// fetchModels lists the identifiers the endpoint serves.
func fetchModels(ctx context.Context, hc *http.Client, url string, header http.Header) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: readErrBody(resp.Body)}
	}
	var out modelList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, classify(err)
	}
	ids := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func readErrBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrBody))
	return string(body)
}
