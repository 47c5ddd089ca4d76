package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a model conversation. Assistant turns may carry
// tool calls instead of (or in addition to) text; tool turns carry the
// result of a call and must reference its ID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// ToolCall is the model asking for a function to be invoked.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names a function and carries its arguments as a raw JSON
// object string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a function the model may call.
type ToolDefinition struct {
	Function FunctionDef `json:"function"`
}

// FunctionDef is a function signature in JSON Schema form.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type CompletionRequest struct {
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
}

type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider produces chat completions. Implementations wrap a specific
// model API behind this interface so callers never see vendor types.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
