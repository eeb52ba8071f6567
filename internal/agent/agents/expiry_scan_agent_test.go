package agents

import (
	"context"
	"testing"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	"github.com/google/uuid"
)

func TestExpiryScanAgentEscalation(t *testing.T) {
	now := time.Now()
	product := &model.Product{ID: uuid.New(), Name: "Cough Syrup"}

	stock := &fakeStockSource{batches: []model.StockBatch{
		{
			ID:          uuid.New(),
			Product:     product,
			BatchNumber: "B-001",
			Quantity:    40,
			ExpiryDate:  now.Add(60 * 24 * time.Hour),
		},
		{
			ID:          uuid.New(),
			Product:     product,
			BatchNumber: "B-002",
			Quantity:    12,
			ExpiryDate:  now.Add(10 * 24 * time.Hour),
		},
	}}
	notifier := &fakeNotifier{}
	pharmacist := model.User{ID: uuid.New()}

	agent := NewExpiryScanAgent(stock, &fakeRecipientSource{users: []model.User{pharmacist}}, notifier,
		"0 7 * * *", 90*24*time.Hour, 30*24*time.Hour)
	if err := agent.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(notifier.calls) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notifier.calls))
	}
	if notifier.calls[0].kind != catalog.KindExpiryWarning {
		t.Errorf("batch at 60 days raised %s, want expiry_warning", notifier.calls[0].kind)
	}
	if notifier.calls[1].kind != catalog.KindExpiryCritical {
		t.Errorf("batch at 10 days raised %s, want expiry_critical", notifier.calls[1].kind)
	}

	payload := notifier.calls[1].payload
	if payload["batchNumber"] != "B-002" {
		t.Errorf("payload batchNumber = %v, want B-002", payload["batchNumber"])
	}
	if payload["productName"] != "Cough Syrup" {
		t.Errorf("payload productName = %v, want Cough Syrup", payload["productName"])
	}
	days, ok := payload["daysUntilExpiry"].(int)
	if !ok || days < 9 || days > 10 {
		t.Errorf("payload daysUntilExpiry = %v, want about 10", payload["daysUntilExpiry"])
	}
}

func TestExpiryScanAgentExpiredBatchClampsToZeroDays(t *testing.T) {
	stock := &fakeStockSource{batches: []model.StockBatch{
		{
			ID:          uuid.New(),
			BatchNumber: "B-009",
			Quantity:    5,
			ExpiryDate:  time.Now().Add(-48 * time.Hour),
		},
	}}
	notifier := &fakeNotifier{}

	agent := NewExpiryScanAgent(stock, &fakeRecipientSource{users: []model.User{{ID: uuid.New()}}}, notifier,
		"0 7 * * *", 90*24*time.Hour, 30*24*time.Hour)
	if err := agent.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.calls))
	}
	if notifier.calls[0].kind != catalog.KindExpiryCritical {
		t.Errorf("expired batch raised %s, want expiry_critical", notifier.calls[0].kind)
	}
	if days := notifier.calls[0].payload["daysUntilExpiry"]; days != 0 {
		t.Errorf("daysUntilExpiry = %v, want 0 for an already expired batch", days)
	}
}
