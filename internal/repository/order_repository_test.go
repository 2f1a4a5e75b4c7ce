package repository

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/domain"
)

func TestOrderRepositoryDuplicateReferenceIsNamedOutcome(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewOrderRepository(db)

	first := &domain.Order{
		ExternalRef: "ORD-1",
		Status:      domain.OrderStatusCreated,
		Amount:      decimal.RequireFromString("19.90"),
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first order: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected server-generated order id")
	}

	second := &domain.Order{
		ExternalRef: "ORD-1",
		Status:      domain.OrderStatusCreated,
		Amount:      decimal.RequireFromString("5.00"),
	}
	if err := repo.Create(second); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestOrderRepositoryFindByIDNotFound(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewOrderRepository(db)
	if _, err := repo.FindByID(12345); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryFindByExternalRef(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewOrderRepository(db)

	order := &domain.Order{
		ExternalRef: "totem_42",
		Status:      domain.OrderStatusCreated,
		Amount:      decimal.RequireFromString("10.00"),
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	found, err := repo.FindByExternalRef("totem_42")
	if err != nil {
		t.Fatalf("find by external ref: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("expected order %d, got %d", order.ID, found.ID)
	}
	if _, err := repo.FindByExternalRef("missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositorySetStatus(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewOrderRepository(db)

	order := &domain.Order{
		ExternalRef: "ORD-2",
		Status:      domain.OrderStatusCreated,
		Amount:      decimal.RequireFromString("7.50"),
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := repo.SetStatus(order.ID, domain.OrderStatusAwaitingPayment); err != nil {
		t.Fatalf("set status: %v", err)
	}
	updated, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find updated order: %v", err)
	}
	if updated.Status != domain.OrderStatusAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %s", updated.Status)
	}
	if err := repo.SetStatus(99999, domain.OrderStatusPaid); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryAmountSurvivesRoundTrip(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewOrderRepository(db)

	order := &domain.Order{
		ExternalRef: "ORD-3",
		Status:      domain.OrderStatusCreated,
		Amount:      decimal.RequireFromString("19.90"),
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	found, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if found.Amount.StringFixed(2) != "19.90" {
		t.Fatalf("expected amount 19.90, got %s", found.Amount.StringFixed(2))
	}
}
