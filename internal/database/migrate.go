package database

import (
	"gorm.io/gorm"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Order{},
		&domain.PaymentAttempt{},
	)
}
