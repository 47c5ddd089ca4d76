package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/config"
	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
)

// WhatsAppService delivers outbound messages through the Graph API.
type WhatsAppService struct {
	httpClient    *http.Client
	baseURL       string
	phoneNumberID string
	token         string
}

func NewWhatsAppService(cfg *config.Config) *WhatsAppService {
	return &WhatsAppService{
		httpClient:    &http.Client{Timeout: config.DeliveryCallTimeout},
		baseURL:       cfg.GraphBaseURL,
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.MetaToken,
	}
}

type outboundText struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             outboundBody `json:"text"`
}

type outboundBody struct {
	Body string `json:"body"`
}

// SendText sends a plain text message to the given phone number.
func (s *WhatsAppService) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(outboundText{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             outboundBody{Body: body},
	})
	if err != nil {
		return apperrors.Internal("failed to encode outbound message")
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return apperrors.Internal("failed to build outbound request")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.External("whatsapp", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Warn().
			Int("status", resp.StatusCode).
			Str("to", to).
			Str("response", string(respBody)).
			Msg("Outbound message rejected")
		return apperrors.External("whatsapp", fmt.Errorf("delivery failed with status %d", resp.StatusCode))
	}
	return nil
}
