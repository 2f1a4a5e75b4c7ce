package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/response"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/service"
)

const (
	webhookSecretHeader = "X-Webhook-Secret"
	maxWebhookBody      = 64 << 10
)

type WebhookHandler struct {
	svc     PaymentOrchestrator
	secret  string
	timeout time.Duration
	logger  *slog.Logger

	// dispatch runs reconciliation after the acknowledgment; swapped for a
	// synchronous runner in tests.
	dispatch func(fn func())
}

func NewWebhookHandler(svc PaymentOrchestrator, secret string, timeout time.Duration, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookHandler{
		svc:      svc,
		secret:   secret,
		timeout:  timeout,
		logger:   logger,
		dispatch: func(fn func()) { go fn() },
	}
}

// Receive acknowledges the delivery before reconciliation runs so the
// provider never retries on our own processing failures. With a configured
// secret, a missing or mismatched header silently drops the event; the 200
// has already been decided by then.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("webhook body read failed", "error", err)
		raw = nil
	}

	response.JSON(w, r, http.StatusOK, map[string]any{"received": true})

	if h.secret != "" {
		header := r.Header.Get(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(header), []byte(h.secret)) != 1 {
			h.logger.Warn("webhook dropped: secret mismatch", "remote_addr", r.RemoteAddr)
			return
		}
	}

	var event service.WebhookEvent
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &event); err != nil {
			h.logger.Warn("webhook dropped: malformed payload", "error", err)
			return
		}
	}

	h.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if err := h.svc.HandleWebhookEvent(ctx, event); err != nil {
			// Already acknowledged; log only.
			h.logger.Error("webhook reconciliation failed", "error", err)
		}
	})
}
