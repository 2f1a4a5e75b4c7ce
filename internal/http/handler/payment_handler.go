package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/gateway"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/response"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/repository"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/service"
)

type PaymentHandler struct {
	svc    PaymentOrchestrator
	logger *slog.Logger
}

func NewPaymentHandler(svc PaymentOrchestrator, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{svc: svc, logger: logger}
}

func (h *PaymentHandler) CreatePoint(w http.ResponseWriter, r *http.Request) {
	orderID, err := parsePathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid order id", nil)
		return
	}
	var body struct {
		TerminalID string `json:"terminal_id"`
		Title      string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	res, err := h.svc.CreatePointPayment(r.Context(), orderID, body.TerminalID, body.Title)
	if err != nil {
		h.writePaymentError(w, r, err, "create point payment", orderID)
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"provider_order_id":   res.ProviderOrderID,
		"provider_payment_id": res.ProviderPayment,
		"status":              res.Status,
		"raw_provider_order":  json.RawMessage(res.RawOrder),
	})
}

func (h *PaymentHandler) CreatePix(w http.ResponseWriter, r *http.Request) {
	orderID, err := parsePathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid order id", nil)
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
			return
		}
	}

	res, err := h.svc.CreatePixPayment(r.Context(), orderID, body.Description)
	if err != nil {
		h.writePaymentError(w, r, err, "create pix payment", orderID)
		return
	}
	response.JSON(w, r, http.StatusCreated, res)
}

func (h *PaymentHandler) FetchProviderOrder(w http.ResponseWriter, r *http.Request) {
	providerOrderID := chi.URLParam(r, "providerOrderID")
	if providerOrderID == "" {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid provider order id", nil)
		return
	}
	res, err := h.svc.FetchProviderOrder(r.Context(), providerOrderID)
	if err != nil {
		h.writeGatewayError(w, r, err, "fetch provider order", providerOrderID)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"id":     res.ID,
		"status": res.Status,
		"raw":    json.RawMessage(res.Raw),
	})
}

func (h *PaymentHandler) CancelProviderOrder(w http.ResponseWriter, r *http.Request) {
	providerOrderID := chi.URLParam(r, "providerOrderID")
	if providerOrderID == "" {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid provider order id", nil)
		return
	}
	res, err := h.svc.CancelProviderOrder(r.Context(), providerOrderID)
	if err != nil {
		h.writeGatewayError(w, r, err, "cancel provider order", providerOrderID)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"id":     res.ID,
		"status": res.Status,
	})
}

func (h *PaymentHandler) writePaymentError(w http.ResponseWriter, r *http.Request, err error, op string, orderID uint) {
	switch {
	case errors.Is(err, service.ErrTerminalRequired):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, repository.ErrOrderNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case isGatewayFailure(err):
		h.writeGatewayError(w, r, err, op, orderID)
	default:
		h.logger.Error(op+" failed", "order_id", orderID, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func isGatewayFailure(err error) bool {
	var gwErr *gateway.Error
	return errors.As(err, &gwErr) || errors.Is(err, gateway.ErrUnavailable)
}

// writeGatewayError logs the provider detail internally and surfaces only an
// opaque category to the caller.
func (h *PaymentHandler) writeGatewayError(w http.ResponseWriter, r *http.Request, err error, op string, subject any) {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		h.logger.Error(op+" rejected by provider", "subject", subject, "provider_status", gwErr.Status, "provider_body", gwErr.Body)
	} else {
		h.logger.Error(op+" failed", "subject", subject, "error", err)
	}
	response.Error(w, r, http.StatusBadGateway, "GATEWAY", "payment provider error", nil)
}
