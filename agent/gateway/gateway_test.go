package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/idurar/emily-assistant/agent/contract"
	llmx "github.com/idurar/emily-assistant/agent/llm"
)

type fakeChatModel struct {
	reply      *schema.Message
	err        error
	boundTools []*schema.ToolInfo
	calls      int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in fake")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.boundTools = tools
	return f, nil
}

func newTestGateway(t *testing.T, model *fakeChatModel) *Gateway {
	t.Helper()
	g, err := NewWithModel(model, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestNewMissingCredentialFailsFast(t *testing.T) {
	t.Parallel()

	// No API key: construction must fail with a configuration error before
	// any network call is attempted.
	_, err := New(context.Background(), llmx.Config{
		Model:   "google/gemini-2.0-flash-001",
		Timeout: time.Second,
	})
	if !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewWithModelBindsCatalog(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{}
	newTestGateway(t, model)

	if len(model.boundTools) != 2 {
		t.Fatalf("expected the full catalog bound, got %d tools", len(model.boundTools))
	}
}

func TestSendTextReply(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{reply: schema.AssistantMessage("  hello there  ", nil)}
	g := newTestGateway(t, model)

	out, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToolCall != nil {
		t.Fatal("expected a text result")
	}
	if out.Text != "hello there" {
		t.Fatalf("unexpected text: %q", out.Text)
	}
}

func TestSendToolCall(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{reply: schema.AssistantMessage("", []schema.ToolCall{{
		ID:   "call-1",
		Type: "function",
		Function: schema.FunctionCall{
			Name:      "create_client",
			Arguments: `{"name":"Acme Corp"}`,
		},
	}})}
	g := newTestGateway(t, model)

	out, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("create acme")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToolCall == nil {
		t.Fatal("expected a tool call result")
	}
	if out.ToolCall.Tool != "create_client" {
		t.Fatalf("unexpected tool: %s", out.ToolCall.Tool)
	}
	if out.ToolCall.CallID != "call-1" {
		t.Fatalf("unexpected call id: %s", out.ToolCall.CallID)
	}
	if out.ToolCall.Args["name"] != "Acme Corp" {
		t.Fatalf("unexpected args: %v", out.ToolCall.Args)
	}
}

func TestSendKeepsOnlyFirstToolCall(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{reply: schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call-1", Function: schema.FunctionCall{Name: "create_client", Arguments: `{"name":"A"}`}},
		{ID: "call-2", Function: schema.FunctionCall{Name: "create_invoice", Arguments: `{}`}},
	})}
	g := newTestGateway(t, model)

	out, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("do both")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToolCall == nil || out.ToolCall.Tool != "create_client" {
		t.Fatalf("expected only the first tool call, got %+v", out.ToolCall)
	}
}

func TestSendUpstreamFailure(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{err: errors.New("connection reset")}
	g := newTestGateway(t, model)

	_, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSendMalformedToolArguments(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{reply: schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Function: schema.FunctionCall{Name: "create_client", Arguments: "{not json"},
	}})}
	g := newTestGateway(t, model)

	_, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSendEmptyReply(t *testing.T) {
	t.Parallel()

	model := &fakeChatModel{reply: schema.AssistantMessage("", nil)}
	g := newTestGateway(t, model)

	_, err := g.Send(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
