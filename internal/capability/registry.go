package capability

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/llm"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

// Param declares one argument a capability accepts.
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Handler executes a capability for a member. Arguments arrive validated
// against the capability's declared params. The result must be a
// JSON-serializable value.
type Handler func(ctx context.Context, member *model.Member, args map[string]string) (any, error)

// Capability is a named action the assistant can take on a member's behalf.
type Capability struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// Registry holds the fixed set of capabilities exposed to the model.
// Registration happens once at startup; dispatch is read-only after that.
type Registry struct {
	capabilities map[string]Capability
	order        []string
}

func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

func (r *Registry) Register(c Capability) {
	if _, exists := r.capabilities[c.Name]; !exists {
		r.order = append(r.order, c.Name)
	}
	r.capabilities[c.Name] = c
}

// Definitions renders the registered capabilities as tool definitions in
// registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		c := r.capabilities[name]
		properties := make(map[string]any, len(c.Params))
		required := []string{}
		for _, p := range c.Params {
			properties[p.Name] = map[string]any{
				"type":        "string",
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		defs = append(defs, llm.ToolDefinition{
			Function: llm.FunctionDef{
				Name:        c.Name,
				Description: c.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return defs
}

// Dispatch validates and executes a tool call requested by the model. The
// arguments payload is untrusted input: unknown names, malformed JSON,
// undeclared parameters, and missing required parameters are all rejected
// before the handler runs.
func (r *Registry) Dispatch(ctx context.Context, member *model.Member, name, arguments string) (any, error) {
	c, ok := r.capabilities[name]
	if !ok {
		return nil, apperrors.UnknownCapability(name)
	}

	args, err := decodeArguments(arguments)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		declared[p.Name] = true
	}
	for key := range args {
		if !declared[key] {
			return nil, apperrors.InvalidArguments(fmt.Sprintf("unexpected parameter %q", key))
		}
	}
	for _, p := range c.Params {
		if p.Required {
			if v, ok := args[p.Name]; !ok || v == "" {
				return nil, apperrors.InvalidArguments(fmt.Sprintf("missing required parameter %q", p.Name)).
					WithDetails(map[string]string{"parameter": p.Name})
			}
		}
	}

	return c.Handler(ctx, member, args)
}

// decodeArguments parses the model's argument payload into string values.
// Models occasionally emit numbers or booleans where strings are declared,
// so scalar values are coerced rather than rejected.
func decodeArguments(arguments string) (map[string]string, error) {
	if arguments == "" {
		return map[string]string{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(arguments), &raw); err != nil {
		return nil, apperrors.InvalidArguments("arguments are not a JSON object")
	}

	args := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			args[key] = v
		case float64:
			args[key] = trimFloat(v)
		case bool:
			args[key] = fmt.Sprintf("%t", v)
		case nil:
			// Treat explicit null the same as an omitted parameter.
		default:
			return nil, apperrors.InvalidArguments(fmt.Sprintf("parameter %q must be a string", key))
		}
	}
	return args, nil
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
