package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/gateway"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/middleware"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/service"
)

// PaymentOrchestrator is the slice of the reconciliation core the HTTP layer
// depends on.
type PaymentOrchestrator interface {
	CreateOrder(ctx context.Context, externalRef string, amount float64) (*domain.Order, error)
	GetOrder(ctx context.Context, id uint) (*domain.Order, *domain.PaymentAttempt, error)
	CreatePointPayment(ctx context.Context, orderID uint, terminalID, title string) (*service.PointPaymentResult, error)
	CreatePixPayment(ctx context.Context, orderID uint, description string) (*service.PixPaymentResult, error)
	FetchProviderOrder(ctx context.Context, providerOrderID string) (*gateway.OrderResult, error)
	CancelProviderOrder(ctx context.Context, providerOrderID string) (*gateway.OrderResult, error)
	HandleWebhookEvent(ctx context.Context, event service.WebhookEvent) error
}

// NewRouter assembles the HTTP surface. The webhook route sits behind its
// own per-source rate limiter; the totem-facing API does not.
func NewRouter(
	orders *OrderHandler,
	payments *PaymentHandler,
	webhooks *WebhookHandler,
	health *HealthHandler,
	webhookLimiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", health.Live)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", orders.Create)
		r.Get("/orders/{id}", orders.Get)
		r.Post("/orders/{id}/payments/point", payments.CreatePoint)
		r.Post("/orders/{id}/payments/pix", payments.CreatePix)
		r.Get("/provider/orders/{providerOrderID}", payments.FetchProviderOrder)
		r.Post("/provider/orders/{providerOrderID}/cancel", payments.CancelProviderOrder)
	})

	r.Group(func(r chi.Router) {
		if webhookLimiter != nil {
			r.Use(webhookLimiter.Middleware())
		}
		r.Post("/webhooks/payments", webhooks.Receive)
	})

	return r
}

func parsePathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
