package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
)

var ErrAttemptNotFound = errors.New("payment attempt not found")

type PaymentAttemptRepository interface {
	Create(attempt *domain.PaymentAttempt) error
	RecordProviderResult(id uint, providerOrderID, providerPaymentID, status string, rawPayload []byte) error
	// UpdateStatusByProviderOrderID correlates a webhook-reported status to a
	// local attempt. Zero matched rows is a valid outcome: the event may
	// reference an attempt never tracked here, or arrive before the creating
	// request's write committed.
	UpdateStatusByProviderOrderID(providerOrderID, status string, rawPayload []byte) (int64, error)
	LatestForOrder(orderID uint) (*domain.PaymentAttempt, error)
}

type GormPaymentAttemptRepository struct{ db *gorm.DB }

func NewPaymentAttemptRepository(db *gorm.DB) PaymentAttemptRepository {
	return &GormPaymentAttemptRepository{db: db}
}

func (r *GormPaymentAttemptRepository) Create(attempt *domain.PaymentAttempt) error {
	if attempt.Status == "" {
		attempt.Status = "created"
	}
	return r.db.Create(attempt).Error
}

func (r *GormPaymentAttemptRepository) RecordProviderResult(id uint, providerOrderID, providerPaymentID, status string, rawPayload []byte) error {
	res := r.db.Model(&domain.PaymentAttempt{}).Where("id = ?", id).Updates(map[string]any{
		"provider_order_id":   providerOrderID,
		"provider_payment_id": providerPaymentID,
		"status":              status,
		"raw_payload":         rawPayload,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (r *GormPaymentAttemptRepository) UpdateStatusByProviderOrderID(providerOrderID, status string, rawPayload []byte) (int64, error) {
	if providerOrderID == "" {
		return 0, nil
	}
	res := r.db.Model(&domain.PaymentAttempt{}).
		Where("provider_order_id = ?", providerOrderID).
		Updates(map[string]any{"status": status, "raw_payload": rawPayload})
	return res.RowsAffected, res.Error
}

func (r *GormPaymentAttemptRepository) LatestForOrder(orderID uint) (*domain.PaymentAttempt, error) {
	var attempt domain.PaymentAttempt
	err := r.db.Where("order_id = ?", orderID).
		Order("created_at desc").Order("id desc").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return &attempt, nil
}
