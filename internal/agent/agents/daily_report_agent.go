package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	saleRepo "anoa.com/apotekpos/internal/modules/sale/repository"
)

type SalesTotalsSource interface {
	DailyTotals(day time.Time) (*saleRepo.DailyTotals, error)
}

// DailyReportAgent sends the end-of-day sales digest to admins and
// pharmacists.
type DailyReportAgent struct {
	sales      SalesTotalsSource
	recipients RecipientSource
	notifier   Notifier
	schedule   string
}

func NewDailyReportAgent(sales SalesTotalsSource, recipients RecipientSource, notifier Notifier, schedule string) *DailyReportAgent {
	return &DailyReportAgent{
		sales:      sales,
		recipients: recipients,
		notifier:   notifier,
		schedule:   schedule,
	}
}

func (a *DailyReportAgent) GetName() string {
	return "daily-report"
}

func (a *DailyReportAgent) GetSchedule() string {
	return a.schedule
}

func (a *DailyReportAgent) Execute(ctx context.Context) error {
	day := time.Now()
	totals, err := a.sales.DailyTotals(day)
	if err != nil {
		return err
	}

	payload := model.JSONMap{
		"date":             day.Format("2006-01-02"),
		"transactionCount": totals.TransactionCount,
		"revenue":          fmt.Sprintf("Rp%.0f", totals.Revenue),
	}

	for _, role := range []string{"admin", pharmacistRole} {
		recipients, err := a.recipients.FindByRole(ctx, role)
		if err != nil {
			log.Printf("[daily-report] failed to load %s recipients: %v", role, err)
			continue
		}
		for _, recipient := range recipients {
			if _, err := a.notifier.Generate(ctx, catalog.KindDailyReport, recipient.ID, payload); err != nil {
				log.Printf("[daily-report] notification for %s failed: %v", recipient.Username, err)
			}
		}
	}

	return nil
}
