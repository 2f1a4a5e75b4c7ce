package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable wraps transport-level failures (timeout, connection
// refused). A timed-out creation is ambiguous: the provider may have
// registered the attempt anyway.
var ErrUnavailable = errors.New("payment provider unavailable")

// Error carries the provider's non-2xx response. Handlers log it with full
// detail and surface only an opaque gateway category to callers.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// ID is a provider identifier. The provider emits ids inconsistently as
// JSON strings ("PAY-1") or bare number tokens (123456); both decode to
// their literal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// OrderResult is the provider's view of a terminal ("point") order.
type OrderResult struct {
	ID                string
	Status            string
	ExternalReference string
	PaymentID         string
	PaymentStatus     string
	Raw               []byte
}

// PaymentResult is the provider's view of a direct payment (PIX, or the
// payment backing a point order).
type PaymentResult struct {
	ID                string
	OrderID           string
	Status            string
	ExternalReference string
	QRCode            string
	QRCodeBase64      string
	TicketURL         string
	Raw               []byte
}

type orderPayload struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
	Transactions      struct {
		Payments []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"payments"`
	} `json:"transactions"`
}

type paymentPayload struct {
	ID                ID     `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
	Order             struct {
		ID ID `json:"id"`
	} `json:"order"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (p orderPayload) toResult(raw []byte) *OrderResult {
	res := &OrderResult{
		ID:                p.ID,
		Status:            p.Status,
		ExternalReference: p.ExternalReference,
		Raw:               raw,
	}
	if len(p.Transactions.Payments) > 0 {
		res.PaymentID = p.Transactions.Payments[0].ID
		res.PaymentStatus = p.Transactions.Payments[0].Status
	}
	return res
}

func (p paymentPayload) toResult(raw []byte) *PaymentResult {
	return &PaymentResult{
		ID:                p.ID.String(),
		OrderID:           p.Order.ID.String(),
		Status:            p.Status,
		ExternalReference: p.ExternalReference,
		QRCode:            p.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64:      p.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:         p.PointOfInteraction.TransactionData.TicketURL,
		Raw:               raw,
	}
}
