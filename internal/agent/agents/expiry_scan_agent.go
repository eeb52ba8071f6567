package agents

import (
	"context"
	"log"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
)

// ExpiryScanAgent sweeps stock batches and raises expiry notifications.
// Batches inside the critical window escalate to expiry_critical.
type ExpiryScanAgent struct {
	stock          StockSource
	recipients     RecipientSource
	notifier       Notifier
	schedule       string
	warningWindow  time.Duration
	criticalWindow time.Duration
}

func NewExpiryScanAgent(stock StockSource, recipients RecipientSource, notifier Notifier, schedule string, warningWindow, criticalWindow time.Duration) *ExpiryScanAgent {
	return &ExpiryScanAgent{
		stock:          stock,
		recipients:     recipients,
		notifier:       notifier,
		schedule:       schedule,
		warningWindow:  warningWindow,
		criticalWindow: criticalWindow,
	}
}

func (a *ExpiryScanAgent) GetName() string {
	return "expiry-scan"
}

func (a *ExpiryScanAgent) GetSchedule() string {
	return a.schedule
}

func (a *ExpiryScanAgent) Execute(ctx context.Context) error {
	batches, err := a.stock.ExpiringBatches(a.warningWindow)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		return nil
	}

	recipients, err := a.recipients.FindByRole(ctx, pharmacistRole)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, batch := range batches {
		untilExpiry := batch.ExpiryDate.Sub(now)

		kind := catalog.KindExpiryWarning
		if untilExpiry <= a.criticalWindow {
			kind = catalog.KindExpiryCritical
		}

		days := int(untilExpiry.Hours() / 24)
		if days < 0 {
			days = 0
		}

		payload := model.JSONMap{
			"batchId":         batch.ID.String(),
			"batchNumber":     batch.BatchNumber,
			"daysUntilExpiry": days,
			"quantity":        batch.Quantity,
		}
		if batch.Product != nil {
			payload["productId"] = batch.Product.ID.String()
			payload["productName"] = batch.Product.Name
		}

		for _, recipient := range recipients {
			if _, err := a.notifier.Generate(ctx, kind, recipient.ID, payload); err != nil {
				log.Printf("[expiry-scan] %s for batch %s failed: %v", kind, batch.BatchNumber, err)
			}
		}
	}

	return nil
}
