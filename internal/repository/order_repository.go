package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateReference is the named outcome for the external_ref
	// uniqueness violation so callers can answer with a conflict instead
	// of a generic persistence failure.
	ErrDuplicateReference = errors.New("external reference already exists")
)

type OrderRepository interface {
	Create(order *domain.Order) error
	FindByID(id uint) (*domain.Order, error)
	FindByExternalRef(ref string) (*domain.Order, error)
	SetStatus(id uint, status domain.OrderStatus) error
}

type GormOrderRepository struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(order *domain.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByExternalRef(ref string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.Where("external_ref = ?", ref).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) SetStatus(id uint, status domain.OrderStatus) error {
	res := r.db.Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// isDuplicateKey recognizes unique-index violations across the drivers in
// use. gorm translates them when TranslateError is on; the string checks
// cover drivers that slip through untranslated.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
