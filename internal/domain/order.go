package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusCreated:         0,
	OrderStatusAwaitingPayment: 1,
	OrderStatusPaid:            2,
}

// Advance returns the status the order should hold after a transition toward
// target. Transitions only ever move forward: a paid order stays paid no
// matter what the caller asks for.
func (s OrderStatus) Advance(target OrderStatus) OrderStatus {
	if orderStatusRank[target] > orderStatusRank[s] {
		return target
	}
	return s
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ExternalRef string          `gorm:"uniqueIndex;size:64;not null" json:"external_ref"`
	Status      OrderStatus     `gorm:"size:32;not null;default:created" json:"status"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
