package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/idurar/emily-assistant/agent/contract"
)

var (
	ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)
)

// Assistant runs the tool-augmented chat loop: one model turn, an optional
// tool execution, and at most one follow-up turn to compose the final reply.
type Assistant struct {
	gateway contractx.ModelGateway
	execute contractx.ToolExecutor

	graphRunner compose.Runnable[GraphInput, GraphOutput]
}

func New(gateway contractx.ModelGateway, execute contractx.ToolExecutor) (*Assistant, error) {
	if gateway == nil {
		return nil, errors.New("model gateway is required")
	}
	if execute == nil {
		return nil, errors.New("tool executor is required")
	}

	a := &Assistant{
		gateway: gateway,
		execute: execute,
	}

	graphRunner, err := a.compileChatGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// HandleMessage processes one inbound user message with its caller-supplied
// history and returns Emily's reply. Exactly one or two model turns happen
// per call; never zero, never more than two.
func (a *Assistant) HandleMessage(ctx context.Context, message string, history []contractx.Message) (string, error) {
	out, err := a.graphRunner.Invoke(ctx, GraphInput{
		Message: message,
		History: history,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}
