package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/idurar/emily-assistant/agent/contract"
	llmx "github.com/idurar/emily-assistant/agent/llm"
	toolx "github.com/idurar/emily-assistant/agent/tool"
)

// Gateway mediates between the assistant and the model backend. The tool
// catalog is bound to the chat model once at construction; each Send is one
// bounded-timeout turn.
type Gateway struct {
	model   einomodel.ToolCallingChatModel
	timeout time.Duration
}

var _ contractx.ModelGateway = (*Gateway)(nil)

// New validates the configuration and constructs the tool-bound chat model.
// A missing credential fails here, before any network call is attempted.
func New(ctx context.Context, cfg llmx.Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	openRouterCfg := cfg.OpenRouter()
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create chat model: %v", contractx.ErrConfiguration, err)
	}

	return NewWithModel(chatModel, cfg.Timeout)
}

// NewWithModel binds the tool catalog to an existing chat model. Exposed for
// tests that substitute the model.
func NewWithModel(chatModel einomodel.ToolCallingChatModel, timeout time.Duration) (*Gateway, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrConfiguration)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	toolModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrConfiguration, err)
	}

	return &Gateway{model: toolModel, timeout: timeout}, nil
}

// Send runs one model turn and maps the reply to a tagged TurnResult. When
// the model requests several tool calls, only the first is kept; the rest
// are logged and discarded rather than silently lost.
func (g *Gateway) Send(ctx context.Context, messages []*schema.Message) (contractx.TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.model.Generate(ctx, messages)
	if err != nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: generate: %v", contractx.ErrUpstream, err)
	}
	if msg == nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: empty model reply", contractx.ErrUpstream)
	}

	if len(msg.ToolCalls) > 0 {
		if len(msg.ToolCalls) > 1 {
			log.Warn().
				Int("discarded", len(msg.ToolCalls)-1).
				Str("kept", msg.ToolCalls[0].Function.Name).
				Msg("model requested multiple tool calls; only the first is processed")
		}

		call := msg.ToolCalls[0]
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contractx.TurnResult{}, fmt.Errorf("%w: malformed tool arguments: %v", contractx.ErrUpstream, err)
			}
		}

		return contractx.TurnResult{ToolCall: &contractx.ToolRequest{
			CallID: call.ID,
			Tool:   call.Function.Name,
			Args:   args,
		}}, nil
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return contractx.TurnResult{}, fmt.Errorf("%w: model returned neither text nor a tool call", contractx.ErrUpstream)
	}
	return contractx.TurnResult{Text: text}, nil
}
