package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/logger"
)

// WhatsApp posts messages to a WhatsApp gateway:
//
//	POST {url}  Authorization: Bearer {token}
//	{"phone": "...", "message": "..."}
type WhatsApp struct {
	url    string
	token  string
	client *http.Client
}

// NewWhatsApp returns a gateway client. A nil client gets a 10s timeout.
func NewWhatsApp(url, token string, client *http.Client) *WhatsApp {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WhatsApp{url: url, token: token, client: client}
}

type whatsAppRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (w *WhatsApp) Notify(ctx context.Context, recipient, message string) bool {
	log := logger.FromCtx(ctx).With(zap.String("recipient", recipient))

	body, err := json.Marshal(whatsAppRequest{Phone: recipient, Message: message})
	if err != nil {
		log.Error("whatsapp: encode request", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		log.Error("whatsapp: build request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		log.Warn("whatsapp: send", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("whatsapp: gateway rejected message", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}
