package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/response"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/money"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/repository"
)

type OrderHandler struct {
	svc    PaymentOrchestrator
	logger *slog.Logger
}

func NewOrderHandler(svc PaymentOrchestrator, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{svc: svc, logger: logger}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExternalRef string  `json:"external_ref"`
		Amount      float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), body.ExternalRef, body.Amount)
	if err != nil {
		switch {
		case errors.Is(err, money.ErrInvalidRef), errors.Is(err, money.ErrInvalidAmount):
			response.Error(w, r, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, repository.ErrDuplicateReference):
			response.Error(w, r, http.StatusConflict, "CONFLICT", "external reference already exists", nil)
		default:
			h.logger.Error("create order failed", "external_ref", body.ExternalRef, "error", err)
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create order", nil)
		}
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]any{"order_id": order.ID})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "id")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid order id", nil)
		return
	}

	order, latest, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		h.logger.Error("get order failed", "order_id", id, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"order":          order,
		"latest_payment": latest,
	})
}
