package agents

import (
	"context"
	"log"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
)

// StockScanAgent sweeps the product catalog and raises low/critical stock
// notifications for pharmacists.
type StockScanAgent struct {
	stock      StockSource
	recipients RecipientSource
	notifier   Notifier
	schedule   string
}

func NewStockScanAgent(stock StockSource, recipients RecipientSource, notifier Notifier, schedule string) *StockScanAgent {
	return &StockScanAgent{
		stock:      stock,
		recipients: recipients,
		notifier:   notifier,
		schedule:   schedule,
	}
}

func (a *StockScanAgent) GetName() string {
	return "stock-scan"
}

func (a *StockScanAgent) GetSchedule() string {
	return a.schedule
}

func (a *StockScanAgent) Execute(ctx context.Context) error {
	products, err := a.stock.LowStockProducts()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	recipients, err := a.recipients.FindByRole(ctx, pharmacistRole)
	if err != nil {
		return err
	}

	for _, product := range products {
		kind := catalog.KindLowStock
		if product.Stock <= product.CriticalLevel {
			kind = catalog.KindCriticalStock
		}

		payload := model.JSONMap{
			"productId":     product.ID.String(),
			"productName":   product.Name,
			"currentStock":  product.Stock,
			"reorderLevel":  product.ReorderLevel,
			"criticalLevel": product.CriticalLevel,
		}
		if product.Supplier != nil {
			payload["supplierName"] = product.Supplier.Name
		}

		// One failing product never aborts the sweep.
		for _, recipient := range recipients {
			if _, err := a.notifier.Generate(ctx, kind, recipient.ID, payload); err != nil {
				log.Printf("[stock-scan] %s for %s failed: %v", kind, product.Name, err)
			}
		}
	}

	return nil
}
