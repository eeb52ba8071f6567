package service

import (
	"time"

	invService "anoa.com/apotekpos/internal/modules/inventory/service"
	notifService "anoa.com/apotekpos/internal/modules/notification/service"
	saleService "anoa.com/apotekpos/internal/modules/sale/service"
	"github.com/google/uuid"
)

// Overview is the back-office landing page payload.
type Overview struct {
	TodayTransactions int64                 `json:"today_transactions"`
	TodayRevenue      float64               `json:"today_revenue"`
	LowStockCount     int                   `json:"low_stock_count"`
	ExpiringSoonCount int                   `json:"expiring_soon_count"`
	Notifications     *notifService.Summary `json:"notifications"`
}

type DashboardService interface {
	GetOverview(userID uuid.UUID) (*Overview, error)
}

type dashboardService struct {
	sales         saleService.SaleService
	inventory     invService.InventoryService
	notifications notifService.NotificationService
	expiryWindow  time.Duration
}

func NewDashboardService(sales saleService.SaleService, inventory invService.InventoryService, notifications notifService.NotificationService, expiryWindow time.Duration) DashboardService {
	return &dashboardService{
		sales:         sales,
		inventory:     inventory,
		notifications: notifications,
		expiryWindow:  expiryWindow,
	}
}

func (s *dashboardService) GetOverview(userID uuid.UUID) (*Overview, error) {
	totals, err := s.sales.DailyTotals(time.Now())
	if err != nil {
		return nil, err
	}

	lowStock, err := s.inventory.LowStockProducts()
	if err != nil {
		return nil, err
	}

	expiring, err := s.inventory.ExpiringBatches(s.expiryWindow)
	if err != nil {
		return nil, err
	}

	summary, err := s.notifications.GetDashboardSummary(userID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TodayTransactions: totals.TransactionCount,
		TodayRevenue:      totals.Revenue,
		LowStockCount:     len(lowStock),
		ExpiringSoonCount: len(expiring),
		Notifications:     summary,
	}, nil
}
