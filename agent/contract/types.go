package contract

// Role identifies who authored a chat message. The HTTP caller supplies
// history with these values; anything else is rejected up front.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the caller-supplied conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolRequest is a model-requested invocation of a named domain operation.
// CallID ties the eventual result back to the originating model turn.
type ToolRequest struct {
	CallID string         `json:"call_id,omitempty"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
}

// ToolResult is what the executor reports back to the model. Failures are
// carried here with Success=false, never as transport-level errors, so the
// model can relay them to the end user.
type ToolResult struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// TurnResult is the tagged outcome of one model turn: either plain text or
// a single tool call. Never both.
type TurnResult struct {
	Text     string
	ToolCall *ToolRequest
}
