package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ModelGateway performs one exchange with the model backend. The tool
// declarations are bound at construction; Send only carries the context
// window.
type ModelGateway interface {
	Send(ctx context.Context, messages []*schema.Message) (TurnResult, error)
}

// ToolExecutor dispatches a requested tool call to the matching domain
// operation. Execution problems are reported inside the ToolResult; the
// error return is reserved for infrastructure failures (store unreachable).
type ToolExecutor func(ctx context.Context, req ToolRequest) (ToolResult, error)
