package agents

import (
	"context"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	notifService "anoa.com/apotekpos/internal/modules/notification/service"
	"github.com/google/uuid"
)

// Narrow views of the services the agents depend on; the concrete module
// services satisfy them, fakes stand in for tests.

type Notifier interface {
	Generate(ctx context.Context, kind catalog.Kind, userID uuid.UUID, payload model.JSONMap) (*notifService.DispatchResult, error)
}

type RecipientSource interface {
	FindByRole(ctx context.Context, roleName string) ([]model.User, error)
}

type StockSource interface {
	LowStockProducts() ([]model.Product, error)
	ExpiringBatches(within time.Duration) ([]model.StockBatch, error)
}

// pharmacistRole is the role that receives operational scan notifications.
const pharmacistRole = "apoteker"
