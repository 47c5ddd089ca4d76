package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/model"
	"github.com/studiofit/gym-assistant-go/internal/repository"
)

const (
	resetConfirmation = "Alles klar, ich habe unsere Unterhaltung zurückgesetzt. Womit kann ich helfen?"
	busyReply         = "Du schreibst gerade sehr schnell! Gib mir einen Moment und versuch es gleich nochmal."
	degradedReply     = "I'm having technical trouble right now. Please try again in a moment."
)

type replyEngine interface {
	HandleMessage(ctx context.Context, member *model.Member, text string) string
}

type messageSender interface {
	SendText(ctx context.Context, to, body string) error
}

type rateLimiter interface {
	Allow(ctx context.Context, phone string) bool
}

type conversationStore interface {
	Clear(ctx context.Context, phone string) error
	SetProfile(ctx context.Context, phone string, fields map[string]string) error
}

// WebhookHandler serves Meta's webhook verification handshake and inbound
// message deliveries.
type WebhookHandler struct {
	verifyToken string
	members     repository.MemberRepository
	store       conversationStore
	limiter     rateLimiter
	engine      replyEngine
	sender      messageSender
}

func NewWebhookHandler(
	verifyToken string,
	members repository.MemberRepository,
	store conversationStore,
	limiter rateLimiter,
	engine replyEngine,
	sender messageSender,
) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		members:     members,
		store:       store,
		limiter:     limiter,
		engine:      engine,
		sender:      sender,
	}
}

// Verify answers the subscription handshake. Meta expects the raw
// challenge string back on success.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		log.Warn().Str("mode", mode).Msg("Webhook verification rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(challenge))
}

// Receive processes an inbound delivery. Replies are sent out of band via
// the Graph API; the webhook response itself just acknowledges receipt so
// Meta does not retry.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Webhook payload is not valid JSON")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	ctx := r.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			h.handleChange(ctx, change.Value)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *WebhookHandler) handleChange(ctx context.Context, value ChangeValue) {
	names := make(map[string]string, len(value.Contacts))
	for _, contact := range value.Contacts {
		names[contact.WaID] = contact.Profile.Name
	}

	for _, msg := range value.Messages {
		if msg.Type != "text" || msg.Text == nil {
			log.Debug().Str("type", msg.Type).Msg("Ignoring non-text message")
			continue
		}
		h.handleMessage(ctx, msg.From, names[msg.From], msg.Text.Body)
	}
}

func (h *WebhookHandler) handleMessage(ctx context.Context, from, contactName, text string) {
	var name *string
	if contactName != "" {
		name = &contactName
	}

	member, err := h.members.Upsert(ctx, from, name)
	if err != nil {
		log.Error().Err(err).Str("from", from).Msg("Member lookup failed")
		h.reply(ctx, from, degradedReply)
		return
	}

	if isResetCommand(text) {
		if err := h.store.Clear(ctx, from); err != nil {
			log.Error().Err(err).Str("memberId", member.ID).Msg("Failed to clear conversation")
			h.reply(ctx, from, degradedReply)
			return
		}
		h.reply(ctx, from, resetConfirmation)
		return
	}

	if !h.limiter.Allow(ctx, from) {
		log.Warn().Str("memberId", member.ID).Msg("Member rate limited")
		h.reply(ctx, from, busyReply)
		return
	}

	replyText := h.engine.HandleMessage(ctx, member, text)

	if contactName != "" {
		if err := h.store.SetProfile(ctx, from, map[string]string{"name": contactName}); err != nil {
			log.Warn().Err(err).Str("memberId", member.ID).Msg("Failed to store profile name")
		}
	}

	h.reply(ctx, from, replyText)
}

func (h *WebhookHandler) reply(ctx context.Context, to, text string) {
	if err := h.sender.SendText(ctx, to, text); err != nil {
		log.Error().Err(err).Str("to", to).Msg("Failed to deliver reply")
	}
}

func isResetCommand(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "stop", "reset", "/reset":
		return true
	}
	return false
}
