package provider

import (
	"context"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
)

// AgentOptions configure NewAgent. Command is the agent process to spawn;
// it must speak MCP over stdio and expose a completion tool.
type AgentOptions struct {
	Command []string
	// Tool is the tool name invoked per completion, "complete" by default.
	Tool string
	// Model is an advisory label reported by Model().
	Model string
	// Transport, when set, replaces the spawned command transport with a
	// caller-established one.
	Transport mcp.Transport
}

// AgentClient wraps a session-oriented backend. CheckStatus spawns the
// long-lived session; Complete sends one prompt through it. There is no
// retry: a missing session is a hard unavailability signal.
type AgentClient struct {
	command   []string
	tool      string
	model     string
	transport mcp.Transport
	session   *mcp.ClientSession
}

func NewAgent(opts AgentOptions) *AgentClient {
	if opts.Tool == "" {
		opts.Tool = "complete"
	}
	return &AgentClient{
		command:   opts.Command,
		tool:      opts.Tool,
		model:     opts.Model,
		transport: opts.Transport,
	}
}

// CheckStatus starts the session process if it is not yet running. A failed
// spawn is reported as unavailable, not as an error.
func (c *AgentClient) CheckStatus(ctx context.Context) (Status, error) {
	if c.session == nil {
		transport := c.transport
		if transport == nil {
			if len(c.command) == 0 {
				return Status{Endpoint: c.Endpoint()}, nil
			}
			transport = &mcp.CommandTransport{Command: exec.Command(c.command[0], c.command[1:]...)}
		}
		client := mcp.NewClient(&mcp.Implementation{Name: "gangplank", Version: "0.1.0"}, nil)
		session, err := client.Connect(ctx, transport, nil)
		if err != nil {
			return Status{Endpoint: c.Endpoint()}, nil
		}
		c.session = session
	}
	return Status{Available: true, Endpoint: c.Endpoint(), ActiveModel: c.model}, nil
}

// Complete sends one prompt through the session and concatenates the text
// content of the reply.
func (c *AgentClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.session == nil {
		return Response{}, ErrUnavailable
	}
	args := map[string]any{"prompt": req.Prompt}
	if req.SystemPrompt != "" {
		args["system_prompt"] = req.SystemPrompt
	}
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: c.tool, Arguments: args})
	if err != nil {
		return Response{}, errors.Wrap(err, "agent session call")
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return Response{}, &UpstreamError{Body: sb.String()}
	}
	return Response{Content: sb.String()}, nil
}

func (c *AgentClient) Ready() bool     { return c.session != nil }
func (c *AgentClient) CloudMode() bool { return false }
func (c *AgentClient) Model() string   { return c.model }

func (c *AgentClient) Endpoint() string {
	if len(c.command) == 0 {
		return ""
	}
	return c.command[0]
}

func (c *AgentClient) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}
