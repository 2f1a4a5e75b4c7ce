package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/gateway"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/money"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/repository"
)

var ErrTerminalRequired = errors.New("terminal id is required")

const providerStatusApproved = "approved"

// WebhookEvent is the provider's push notification. The payload carries only
// identifiers; authoritative state is always fetched back from the provider.
// Both delivery shapes are accepted: {type, data:{id}} and {topic, id}.
type WebhookEvent struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		ID gateway.ID `json:"id"`
	} `json:"data"`
	ID gateway.ID `json:"id"`
}

// PaymentID resolves the event to a payment identifier. Empty means the
// event is not a payment event, or carries no id, and must be discarded.
func (e WebhookEvent) PaymentID() string {
	kind := e.Type
	if kind == "" {
		kind = e.Topic
	}
	if !strings.EqualFold(strings.TrimSpace(kind), "payment") {
		return ""
	}
	if id := e.Data.ID.String(); id != "" {
		return id
	}
	return e.ID.String()
}

type PointPaymentResult struct {
	AttemptID       uint   `json:"attempt_id"`
	ProviderOrderID string `json:"provider_order_id"`
	ProviderPayment string `json:"provider_payment_id"`
	Status          string `json:"status"`
	RawOrder        []byte `json:"-"`
}

type PixPaymentResult struct {
	AttemptID    uint   `json:"attempt_id"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

// PaymentService is the reconciliation core: it owns every Order status
// transition and maps provider responses and webhook events onto local
// Order/PaymentAttempt state.
type PaymentService struct {
	orders   repository.OrderRepository
	attempts repository.PaymentAttemptRepository
	provider gateway.ProviderClient
	logger   *slog.Logger
}

func NewPaymentService(
	orders repository.OrderRepository,
	attempts repository.PaymentAttemptRepository,
	provider gateway.ProviderClient,
	logger *slog.Logger,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{orders: orders, attempts: attempts, provider: provider, logger: logger}
}

// CreateOrder validates and persists a new order. Duplicate references
// surface as repository.ErrDuplicateReference; malformed input as the
// money package's validation errors.
func (s *PaymentService) CreateOrder(_ context.Context, externalRef string, amount float64) (*domain.Order, error) {
	ref, err := money.NormalizeExternalRef(externalRef)
	if err != nil {
		return nil, err
	}
	value, err := money.NormalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	order := &domain.Order{
		ExternalRef: ref,
		Status:      domain.OrderStatusCreated,
		Amount:      value,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns the order and its most recent payment attempt, nil when
// no attempt exists yet.
func (s *PaymentService) GetOrder(_ context.Context, id uint) (*domain.Order, *domain.PaymentAttempt, error) {
	order, err := s.orders.FindByID(id)
	if err != nil {
		return nil, nil, err
	}
	attempt, err := s.attempts.LatestForOrder(order.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAttemptNotFound) {
			return order, nil, nil
		}
		return nil, nil, err
	}
	return order, attempt, nil
}

// CreatePointPayment opens a payment attempt on the given terminal. The
// attempt row is written before the provider call so an ambiguous timeout
// never loses the attempt; the order only advances after the provider
// acknowledges the creation.
func (s *PaymentService) CreatePointPayment(ctx context.Context, orderID uint, terminalID, title string) (*PointPaymentResult, error) {
	if strings.TrimSpace(terminalID) == "" {
		return nil, ErrTerminalRequired
	}
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	attempt := &domain.PaymentAttempt{
		OrderID:    order.ID,
		Provider:   domain.PaymentProviderPoint,
		TerminalID: terminalID,
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}

	res, err := s.provider.CreatePointOrder(ctx, order, terminalID, title)
	if err != nil {
		return nil, err
	}

	if err := s.attempts.RecordProviderResult(attempt.ID, res.ID, res.PaymentID, res.Status, res.Raw); err != nil {
		return nil, err
	}
	if err := s.advanceOrder(order, domain.OrderStatusAwaitingPayment); err != nil {
		return nil, err
	}

	return &PointPaymentResult{
		AttemptID:       attempt.ID,
		ProviderOrderID: res.ID,
		ProviderPayment: res.PaymentID,
		Status:          res.Status,
		RawOrder:        res.Raw,
	}, nil
}

// CreatePixPayment opens a PIX attempt and returns the QR data the totem
// renders for the customer.
func (s *PaymentService) CreatePixPayment(ctx context.Context, orderID uint, description string) (*PixPaymentResult, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	attempt := &domain.PaymentAttempt{
		OrderID:  order.ID,
		Provider: domain.PaymentProviderPix,
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}

	res, err := s.provider.CreatePixPayment(ctx, order, description)
	if err != nil {
		return nil, err
	}

	if err := s.attempts.RecordProviderResult(attempt.ID, res.OrderID, res.ID, res.Status, res.Raw); err != nil {
		return nil, err
	}
	if err := s.advanceOrder(order, domain.OrderStatusAwaitingPayment); err != nil {
		return nil, err
	}

	return &PixPaymentResult{
		AttemptID:    attempt.ID,
		PaymentID:    res.ID,
		Status:       res.Status,
		QRCode:       res.QRCode,
		QRCodeBase64: res.QRCodeBase64,
		TicketURL:    res.TicketURL,
	}, nil
}

// FetchProviderOrder is the synchronous status lookup used by client polling.
func (s *PaymentService) FetchProviderOrder(ctx context.Context, providerOrderID string) (*gateway.OrderResult, error) {
	return s.provider.FetchOrder(ctx, providerOrderID)
}

// CancelProviderOrder cancels the provider-side order. Local order status is
// untouched: a cancelled attempt just means a new one may follow.
func (s *PaymentService) CancelProviderOrder(ctx context.Context, providerOrderID string) (*gateway.OrderResult, error) {
	return s.provider.CancelOrder(ctx, providerOrderID)
}

// HandleWebhookEvent reconciles local state from a provider push
// notification. The ingress has already acknowledged the delivery, so every
// failure here is logged and swallowed; the method is idempotent under
// duplicate or out-of-order redelivery.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event WebhookEvent) error {
	paymentID := event.PaymentID()
	if paymentID == "" {
		s.logger.Debug("webhook event without payment id discarded", "type", event.Type, "topic", event.Topic)
		return nil
	}

	payment, err := s.provider.FetchPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("webhook reconciliation fetch failed", "payment_id", paymentID, "error", err)
		return err
	}

	matched, err := s.attempts.UpdateStatusByProviderOrderID(payment.OrderID, payment.Status, payment.Raw)
	if err != nil {
		s.logger.Error("webhook attempt update failed", "payment_id", paymentID, "error", err)
		return err
	}
	if matched == 0 {
		// Attempt not tracked locally, or the creating request's write has
		// not committed yet. The next delivery or poll catches up.
		s.logger.Info("webhook event matched no local attempt", "payment_id", paymentID, "provider_order_id", payment.OrderID)
	}

	if !strings.EqualFold(payment.Status, providerStatusApproved) || payment.ExternalReference == "" {
		return nil
	}

	order, err := s.orders.FindByExternalRef(payment.ExternalReference)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			s.logger.Info("approved payment references unknown order", "payment_id", paymentID, "external_ref", payment.ExternalReference)
			return nil
		}
		s.logger.Error("webhook order lookup failed", "payment_id", paymentID, "error", err)
		return err
	}
	if err := s.advanceOrder(order, domain.OrderStatusPaid); err != nil {
		s.logger.Error("webhook order transition failed", "payment_id", paymentID, "order_id", order.ID, "error", err)
		return err
	}
	return nil
}

// advanceOrder applies the forward-only state machine and persists the
// result only when the status actually moves.
func (s *PaymentService) advanceOrder(order *domain.Order, target domain.OrderStatus) error {
	next := order.Status.Advance(target)
	if next == order.Status {
		return nil
	}
	if err := s.orders.SetStatus(order.ID, next); err != nil {
		return err
	}
	order.Status = next
	s.logger.Info("order status advanced", "order_id", order.ID, "status", string(next))
	return nil
}
