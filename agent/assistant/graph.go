package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/idurar/emily-assistant/agent/contract"
	conversationx "github.com/idurar/emily-assistant/agent/conversation"
)

type GraphInput struct {
	Message string
	History []contractx.Message
}

type GraphOutput struct {
	Reply string
}

type graphState struct {
	Message string
	Context []*schema.Message

	FirstTurn  contractx.TurnResult
	ToolResult contractx.ToolResult

	Reply string
}

func (a *Assistant) compileChatGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			message := strings.TrimSpace(in.Message)
			if message == "" {
				return nil, ErrInvalidMessage
			}

			session := conversationx.NewSession(in.History)
			window := append(session.ContextWindow(), schema.UserMessage(message))

			return &graphState{
				Message: message,
				Context: window,
			}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("first_turn",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			turn, err := a.gateway.Send(ctx, in.Context)
			if err != nil {
				return nil, err
			}
			in.FirstTurn = turn
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node first_turn: %w", err)
	}

	if err := graph.AddLambdaNode("tool_turn",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return a.runToolTurn(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node tool_turn: %w", err)
	}

	if err := graph.AddLambdaNode("direct_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			in.Reply = in.FirstTurn.Text
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node direct_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (GraphOutput, error) {
			reply := strings.TrimSpace(in.Reply)
			if reply == "" {
				return GraphOutput{}, fmt.Errorf("%w: assistant produced an empty reply", contractx.ErrUpstream)
			}
			return GraphOutput{Reply: reply}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *graphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.FirstTurn.ToolCall != nil {
				return "tool_turn", nil
			}
			return "direct_reply", nil
		},
		map[string]bool{
			"tool_turn":    true,
			"direct_reply": true,
		},
	)

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate: %w", err)
	}
	if err := graph.AddEdge("validate_request", "first_turn"); err != nil {
		return nil, fmt.Errorf("add edge validate->first_turn: %w", err)
	}
	if err := graph.AddBranch("first_turn", branch); err != nil {
		return nil, fmt.Errorf("add branch first_turn: %w", err)
	}
	if err := graph.AddEdge("tool_turn", "finalize_reply"); err != nil {
		return nil, fmt.Errorf("add edge tool_turn->finalize: %w", err)
	}
	if err := graph.AddEdge("direct_reply", "finalize_reply"); err != nil {
		return nil, fmt.Errorf("add edge direct->finalize: %w", err)
	}
	if err := graph.AddEdge("finalize_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add edge finalize->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.chat"))
	if err != nil {
		return nil, fmt.Errorf("compile chat graph: %w", err)
	}
	return runner, nil
}

// runToolTurn executes the requested tool and feeds the result back to the
// model for the closing reply.
func (a *Assistant) runToolTurn(ctx context.Context, in *graphState) (*graphState, error) {
	call := in.FirstTurn.ToolCall

	result, err := a.execute(ctx, *call)
	if err != nil {
		return nil, err
	}
	in.ToolResult = result

	followUp, err := appendToolExchange(in.Context, *call, result)
	if err != nil {
		return nil, err
	}

	second, err := a.gateway.Send(ctx, followUp)
	if err != nil {
		return nil, err
	}

	if second.ToolCall != nil {
		// The result turn must close the exchange; a further tool request
		// would exceed the two-call budget. Fall back to the executor's own
		// confirmation text.
		log.Warn().
			Str("tool", second.ToolCall.Tool).
			Msg("model requested another tool call on the result turn; using the tool message as reply")
		in.Reply = result.Message
		return in, nil
	}

	in.Reply = second.Text
	return in, nil
}

// appendToolExchange extends the context with the assistant's tool call and
// the executor's result, tagged with the originating tool name.
func appendToolExchange(
	window []*schema.Message,
	call contractx.ToolRequest,
	result contractx.ToolResult,
) ([]*schema.Message, error) {
	argsJSON, err := json.Marshal(call.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tool arguments: %v", contractx.ErrValidation, err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tool result: %v", contractx.ErrValidation, err)
	}

	assistantMsg := schema.AssistantMessage("", []schema.ToolCall{{
		ID:   call.CallID,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      call.Tool,
			Arguments: string(argsJSON),
		},
	}})
	// The result JSON carries the originating tool name in its "tool" field.
	toolMsg := schema.ToolMessage(string(resultJSON), call.CallID)

	return append(append([]*schema.Message(nil), window...), assistantMsg, toolMsg), nil
}
