package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/notification/catalog"
	notifService "anoa.com/apotekpos/internal/modules/notification/service"
	"anoa.com/apotekpos/internal/modules/sale/dto"
	saleRepo "anoa.com/apotekpos/internal/modules/sale/repository"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
)

type fakeSaleRepo struct {
	created   *model.Sale
	createErr error
}

func (f *fakeSaleRepo) CreateWithStock(sale *model.Sale) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = sale
	return nil
}

func (f *fakeSaleRepo) GetByID(id uuid.UUID) (*model.Sale, error) { return f.created, nil }

func (f *fakeSaleRepo) List(from, to time.Time, limit, offset int) ([]model.Sale, int64, error) {
	return nil, 0, nil
}

func (f *fakeSaleRepo) Totals(from, to time.Time) (*saleRepo.DailyTotals, error) {
	return &saleRepo.DailyTotals{TransactionCount: 5, Revenue: 250000}, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func (f *fakeProductRepo) Create(*model.Product) error             { return nil }
func (f *fakeProductRepo) Update(*model.Product) error             { return nil }
func (f *fakeProductRepo) Delete(uuid.UUID) error                  { return nil }
func (f *fakeProductRepo) GetBySKU(string) (*model.Product, error) { return nil, apperror.ErrNotFound }

func (f *fakeProductRepo) GetByID(id uuid.UUID) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) List(string, int, int) ([]model.Product, int64, error) {
	return nil, 0, nil
}
func (f *fakeProductRepo) LowStock() ([]model.Product, error)  { return nil, nil }
func (f *fakeProductRepo) AdjustStock(uuid.UUID, int) error    { return nil }
func (f *fakeProductRepo) CreateBatch(*model.StockBatch) error { return nil }
func (f *fakeProductRepo) ExpiringBatches(time.Time) ([]model.StockBatch, error) {
	return nil, nil
}

type fakeUserRepo struct {
	pharmacists []model.User
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) Delete(context.Context, uuid.UUID) error   { return nil }
func (f *fakeUserRepo) FindByID(context.Context, string) (*model.User, error) {
	return nil, apperror.ErrNotFound
}
func (f *fakeUserRepo) FindByUsername(context.Context, string) (*model.User, error) {
	return nil, apperror.ErrNotFound
}
func (f *fakeUserRepo) GetAll(context.Context, int, int) ([]model.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepo) FindByRole(ctx context.Context, roleName string) ([]model.User, error) {
	return f.pharmacists, nil
}
func (f *fakeUserRepo) GetRoleByName(context.Context, string) (*model.Role, error) {
	return nil, apperror.ErrNotFound
}

type notifierCall struct {
	kind    catalog.Kind
	userID  uuid.UUID
	payload model.JSONMap
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) Generate(ctx context.Context, kind catalog.Kind, userID uuid.UUID, payload model.JSONMap) (*notifService.DispatchResult, error) {
	f.calls = append(f.calls, notifierCall{kind: kind, userID: userID, payload: payload})
	return &notifService.DispatchResult{Persisted: true}, nil
}

func (f *fakeNotifier) GetNotifications(uuid.UUID, int, int) ([]model.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) MarkAsRead(uuid.UUID) error           { return nil }
func (f *fakeNotifier) MarkAllAsRead(uuid.UUID) error        { return nil }
func (f *fakeNotifier) UnreadCount(uuid.UUID) (int64, error) { return 0, nil }
func (f *fakeNotifier) Delete(uuid.UUID, uuid.UUID) error    { return nil }
func (f *fakeNotifier) GetDashboardSummary(uuid.UUID) (*notifService.Summary, error) {
	return &notifService.Summary{}, nil
}
func (f *fakeNotifier) GetPreferences(uuid.UUID) (*model.NotificationPreference, error) {
	return nil, nil
}
func (f *fakeNotifier) UpdatePreferences(uuid.UUID, notifService.PreferenceUpdate) (*model.NotificationPreference, error) {
	return nil, nil
}
func (f *fakeNotifier) CleanupExpired(context.Context) (int64, error) { return 0, nil }

var invoicePattern = regexp.MustCompile(`^INV-\d{8}-[0-9a-f]{8}$`)

func TestCreateSalePricesFromCatalog(t *testing.T) {
	product := &model.Product{
		ID:            uuid.New(),
		Name:          "Paracetamol 500mg",
		Price:         12000,
		Stock:         50,
		ReorderLevel:  10,
		CriticalLevel: 5,
	}
	repo := &fakeSaleRepo{}
	svc := NewSaleService(repo,
		&fakeProductRepo{products: map[uuid.UUID]*model.Product{product.ID: product}},
		&fakeUserRepo{}, &fakeNotifier{})

	sale, err := svc.CreateSale(context.Background(), uuid.New(), dto.CreateSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
		Discount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateSale returned error: %v", err)
	}

	if sale.Subtotal != 36000 {
		t.Errorf("subtotal = %v, want 36000 (catalog price, not client price)", sale.Subtotal)
	}
	if sale.Total != 35000 {
		t.Errorf("total = %v, want 35000 after discount", sale.Total)
	}
	if sale.PaymentMethod != "cash" {
		t.Errorf("payment method = %q, want cash default", sale.PaymentMethod)
	}
	if !invoicePattern.MatchString(sale.InvoiceNumber) {
		t.Errorf("invoice number %q does not match INV-YYYYMMDD-xxxxxxxx", sale.InvoiceNumber)
	}
	if repo.created == nil {
		t.Error("sale was not persisted")
	}
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	svc := NewSaleService(&fakeSaleRepo{}, &fakeProductRepo{products: map[uuid.UUID]*model.Product{}},
		&fakeUserRepo{}, &fakeNotifier{})

	_, err := svc.CreateSale(context.Background(), uuid.New(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateSaleDiscountExceedingTotal(t *testing.T) {
	product := &model.Product{ID: uuid.New(), Name: "Vitamin C", Price: 5000, Stock: 10}
	svc := NewSaleService(&fakeSaleRepo{},
		&fakeProductRepo{products: map[uuid.UUID]*model.Product{product.ID: product}},
		&fakeUserRepo{}, &fakeNotifier{})

	_, err := svc.CreateSale(context.Background(), uuid.New(), dto.CreateSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
		Discount: 10000,
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput for negative total", err)
	}
}

func TestCreateSaleRaisesStockNotification(t *testing.T) {
	// Stock already at the reorder level after the sale's decrement.
	product := &model.Product{
		ID:            uuid.New(),
		Name:          "Amoxicillin",
		Price:         8000,
		Stock:         9,
		ReorderLevel:  10,
		CriticalLevel: 5,
	}
	pharmacist := model.User{ID: uuid.New()}
	notifier := &fakeNotifier{}

	svc := NewSaleService(&fakeSaleRepo{},
		&fakeProductRepo{products: map[uuid.UUID]*model.Product{product.ID: product}},
		&fakeUserRepo{pharmacists: []model.User{pharmacist}}, notifier)

	_, err := svc.CreateSale(context.Background(), uuid.New(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSale returned error: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.kind != catalog.KindLowStock {
		t.Errorf("kind = %s, want low_stock", call.kind)
	}
	if call.userID != pharmacist.ID {
		t.Errorf("recipient = %s, want the pharmacist", call.userID)
	}
	if call.payload["productName"] != "Amoxicillin" {
		t.Errorf("payload productName = %v, want Amoxicillin", call.payload["productName"])
	}
}

func TestDailyTotals(t *testing.T) {
	svc := NewSaleService(&fakeSaleRepo{}, &fakeProductRepo{}, &fakeUserRepo{}, &fakeNotifier{})

	totals, err := svc.DailyTotals(time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyTotals returned error: %v", err)
	}
	if totals.TransactionCount != 5 || totals.Revenue != 250000 {
		t.Errorf("totals = %+v, want 5 transactions / 250000 revenue", totals)
	}
}
