package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/apotekpos/internal/model"
	invRepo "anoa.com/apotekpos/internal/modules/inventory/repository"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	notifService "anoa.com/apotekpos/internal/modules/notification/service"
	"anoa.com/apotekpos/internal/modules/sale/dto"
	saleRepo "anoa.com/apotekpos/internal/modules/sale/repository"
	userRepo "anoa.com/apotekpos/internal/modules/user/repository"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
)

type SaleService interface {
	CreateSale(ctx context.Context, cashierID uuid.UUID, input dto.CreateSaleRequest) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	ListSales(from, to time.Time, limit, offset int) ([]model.Sale, int64, error)
	DailyTotals(day time.Time) (*saleRepo.DailyTotals, error)
}

type saleService struct {
	repo         saleRepo.SaleRepository
	products     invRepo.ProductRepository
	users        userRepo.UserRepository
	notification notifService.NotificationService
}

func NewSaleService(repo saleRepo.SaleRepository, products invRepo.ProductRepository, users userRepo.UserRepository, notification notifService.NotificationService) SaleService {
	return &saleService{
		repo:         repo,
		products:     products,
		users:        users,
		notification: notification,
	}
}

func (s *saleService) CreateSale(ctx context.Context, cashierID uuid.UUID, input dto.CreateSaleRequest) (*model.Sale, error) {
	sale := &model.Sale{
		InvoiceNumber: newInvoiceNumber(),
		CashierID:     cashierID,
		Discount:      input.Discount,
		PaymentMethod: input.PaymentMethod,
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = "cash"
	}

	// Price items from the current catalog, never from the client.
	touched := make([]*model.Product, 0, len(input.Items))
	for _, item := range input.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		product, err := s.products.GetByID(productID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.New(404, fmt.Sprintf("product %s not found", item.ProductID), apperror.ErrNotFound)
			}
			return nil, err
		}

		lineTotal := product.Price * float64(item.Quantity)
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		sale.Subtotal += lineTotal
		touched = append(touched, product)
	}
	sale.Total = sale.Subtotal - sale.Discount
	if sale.Total < 0 {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.repo.CreateWithStock(sale); err != nil {
		return nil, err
	}

	// Post-sale stock check feeds the notification pipeline. Failures here
	// never fail the sale: the money is taken, the stock is decremented.
	s.notifyStockLevels(ctx, touched, sale)

	return sale, nil
}

// notifyStockLevels raises low/critical stock notifications for every product
// the sale pushed to or under its thresholds. Recipients are active
// pharmacists; dispatch errors are logged per product and the loop continues.
func (s *saleService) notifyStockLevels(ctx context.Context, products []*model.Product, sale *model.Sale) {
	if s.notification == nil {
		return
	}

	recipients, err := s.users.FindByRole(ctx, "apoteker")
	if err != nil {
		log.Printf("[sale] failed to load notification recipients: %v", err)
		return
	}

	for _, product := range products {
		fresh, err := s.products.GetByID(product.ID)
		if err != nil {
			log.Printf("[sale] failed to re-read product %s: %v", product.ID, err)
			continue
		}
		if fresh.Stock > fresh.ReorderLevel {
			continue
		}

		kind := catalog.KindLowStock
		if fresh.Stock <= fresh.CriticalLevel {
			kind = catalog.KindCriticalStock
		}

		payload := model.JSONMap{
			"productId":     fresh.ID.String(),
			"productName":   fresh.Name,
			"currentStock":  fresh.Stock,
			"reorderLevel":  fresh.ReorderLevel,
			"criticalLevel": fresh.CriticalLevel,
			"saleInvoice":   sale.InvoiceNumber,
		}

		for _, recipient := range recipients {
			if _, err := s.notification.Generate(ctx, kind, recipient.ID, payload); err != nil {
				log.Printf("[sale] %s notification for %s failed: %v", kind, fresh.Name, err)
			}
		}
	}
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	return s.repo.GetByID(id)
}

func (s *saleService) ListSales(from, to time.Time, limit, offset int) ([]model.Sale, int64, error) {
	return s.repo.List(from, to, limit, offset)
}

func (s *saleService) DailyTotals(day time.Time) (*saleRepo.DailyTotals, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.repo.Totals(start, start.AddDate(0, 0, 1))
}

func newInvoiceNumber() string {
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])
}
