package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/capability"
	"github.com/studiofit/gym-assistant-go/internal/config"
	"github.com/studiofit/gym-assistant-go/internal/conversation"
	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/llm"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

const systemPrompt = `You are the friendly assistant of StudioFit, a boutique gym.
Members write to you on WhatsApp to see the class schedule, book a spot, or cancel a booking.
Use the available tools to answer; never invent schedule data or booking confirmations.
When a class is full, say so and mention the waitlist.
Answer in the member's language, briefly and warmly. Use at most one emoji per reply.`

const (
	fallbackReply = "Sorry, I couldn't finish that request. Please try again or write HELP to reach our team."
	degradedReply = "I'm having technical trouble right now. Please try again in a moment."
)

// ConversationStore is the slice of the conversation store the loop needs.
type ConversationStore interface {
	History(ctx context.Context, phone string) ([]conversation.Entry, error)
	Profile(ctx context.Context, phone string) (map[string]string, error)
	Append(ctx context.Context, phone, role, content string) error
}

// Loop drives one member message to one reply. Each model round either
// produces the final text or requests capability calls, whose results are
// fed back in. Rounds are bounded; the loop always produces a reply.
type Loop struct {
	provider  llm.Provider
	registry  *capability.Registry
	store     ConversationStore
	maxRounds int
}

func New(provider llm.Provider, registry *capability.Registry, store ConversationStore, maxRounds int) *Loop {
	return &Loop{
		provider:  provider,
		registry:  registry,
		store:     store,
		maxRounds: maxRounds,
	}
}

// HandleMessage runs the orchestration loop for one inbound message and
// returns the reply text. The reply is never empty: model failures and
// exhausted rounds degrade to fixed texts, and the turn is persisted on
// every path where the store is reachable.
func (l *Loop) HandleMessage(ctx context.Context, member *model.Member, text string) string {
	history, err := l.store.History(ctx, member.Phone)
	if err != nil {
		log.Error().Err(err).Str("memberId", member.ID).Msg("Conversation store unreachable")
		return degradedReply
	}

	profile, err := l.store.Profile(ctx, member.Phone)
	if err != nil {
		log.Error().Err(err).Str("memberId", member.ID).Msg("Conversation store unreachable")
		return degradedReply
	}

	if err := l.store.Append(ctx, member.Phone, string(llm.RoleUser), text); err != nil {
		log.Error().Err(err).Str("memberId", member.ID).Msg("Failed to persist inbound message")
		return degradedReply
	}

	messages := l.buildPrompt(member, profile, history, text)
	tools := l.registry.Definitions()

	reply := l.run(ctx, member, messages, tools)

	if err := l.store.Append(ctx, member.Phone, string(llm.RoleAssistant), reply); err != nil {
		log.Error().Err(err).Str("memberId", member.ID).Msg("Failed to persist reply")
	}
	return reply
}

// decision is the typed outcome of one model round: either the final reply
// text or a set of capability invocations to execute before the next round.
type decision struct {
	final   string
	invokes []llm.ToolCall
}

func decide(resp *llm.CompletionResponse) decision {
	if len(resp.ToolCalls) > 0 {
		return decision{invokes: resp.ToolCalls, final: resp.Content}
	}
	return decision{final: resp.Content}
}

func (l *Loop) run(ctx context.Context, member *model.Member, messages []llm.Message, tools []llm.ToolDefinition) string {
	for round := 0; round < l.maxRounds; round++ {
		resp, err := l.provider.Complete(ctx, llm.CompletionRequest{
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			log.Error().Err(err).Str("memberId", member.ID).Int("round", round).Msg("Model call failed")
			return fallbackReply
		}

		d := decide(resp)
		if len(d.invokes) == 0 {
			if d.final == "" {
				return fallbackReply
			}
			return d.final
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   d.final,
			ToolCalls: d.invokes,
		})
		for _, call := range d.invokes {
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    l.invoke(ctx, member, call),
				ToolCallID: call.ID,
			})
		}
	}

	log.Warn().Str("memberId", member.ID).Int("maxRounds", l.maxRounds).Msg("Tool rounds exhausted")
	return fallbackReply
}

// invoke dispatches one capability call and renders the outcome as the
// tool message content. Capability failures are folded into the
// conversation instead of aborting the loop, so the model can explain the
// problem to the member.
func (l *Loop) invoke(ctx context.Context, member *model.Member, call llm.ToolCall) string {
	result, err := l.registry.Dispatch(ctx, member, call.Function.Name, call.Function.Arguments)
	if err != nil {
		appErr, ok := apperrors.AsAppError(err)
		if !ok {
			appErr = apperrors.Internal("capability failed")
		}
		log.Warn().
			Err(err).
			Str("memberId", member.ID).
			Str("capability", call.Function.Name).
			Str("code", string(apperrors.GetCode(err))).
			Msg("Capability call failed")
		payload, _ := json.Marshal(map[string]string{
			"error":   string(appErr.Code),
			"message": appErr.Message,
		})
		return string(payload)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return `{"error":"INTERNAL_ERROR","message":"result could not be encoded"}`
	}
	return string(payload)
}

// buildPrompt assembles the model conversation: system prompt with known
// profile facts, a window of recent history, then the new message. The
// profile is the TTL'd source of personal context; once expired, only what
// the member row itself carries remains.
func (l *Loop) buildPrompt(member *model.Member, profile map[string]string, history []conversation.Entry, text string) []llm.Message {
	system := systemPrompt
	name := profile["name"]
	if name == "" && member.Name != nil {
		name = *member.Name
	}
	if name != "" {
		system += fmt.Sprintf("\nThe member's name is %s.", name)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}

	window := history
	if len(window) > config.PromptHistoryWindow {
		window = window[len(window)-config.PromptHistoryWindow:]
	}
	for _, entry := range window {
		role := llm.RoleUser
		if entry.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: entry.Content})
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: text})
}
