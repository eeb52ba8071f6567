package service

import (
	"context"
	"io"
	"log"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/inventory/dto"
	invRepo "anoa.com/apotekpos/internal/modules/inventory/repository"
	"anoa.com/apotekpos/pkg/storage"
	"github.com/google/uuid"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, input dto.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input dto.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(category string, limit, offset int) ([]model.Product, int64, error)
	SearchProducts(query, category string, limit int) ([]map[string]interface{}, error)
	UploadProductImage(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*model.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error)
	ReceiveBatch(ctx context.Context, productID uuid.UUID, input dto.ReceiveBatchRequest) (*model.StockBatch, error)

	// Scan queries used by the notification agents.
	LowStockProducts() ([]model.Product, error)
	ExpiringBatches(within time.Duration) ([]model.StockBatch, error)
}

type inventoryService struct {
	repo         invRepo.ProductRepository
	search       ProductSearchService
	imageStorage storage.ImageStorage
}

func NewInventoryService(repo invRepo.ProductRepository, search ProductSearchService, imageStorage storage.ImageStorage) InventoryService {
	return &inventoryService{
		repo:         repo,
		search:       search,
		imageStorage: imageStorage,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, input dto.CreateProductRequest) (*model.Product, error) {
	product := &model.Product{
		SKU:           input.SKU,
		Name:          input.Name,
		GenericName:   input.GenericName,
		Category:      input.Category,
		Price:         input.Price,
		CostPrice:     input.CostPrice,
		Stock:         input.Stock,
		ReorderLevel:  input.ReorderLevel,
		CriticalLevel: input.CriticalLevel,
	}
	if product.ReorderLevel == 0 {
		product.ReorderLevel = 10
	}
	if product.CriticalLevel == 0 {
		product.CriticalLevel = 5
	}
	if input.SupplierID != nil {
		supplierID, err := uuid.Parse(*input.SupplierID)
		if err == nil {
			product.SupplierID = &supplierID
		}
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.indexProduct(product)
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, input dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.GenericName != nil {
		product.GenericName = *input.GenericName
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}
	if input.CriticalLevel != nil {
		product.CriticalLevel = *input.CriticalLevel
	}
	if input.SupplierID != nil {
		supplierID, err := uuid.Parse(*input.SupplierID)
		if err == nil {
			product.SupplierID = &supplierID
		}
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.indexProduct(product)
	return product, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if product.ImageURL != nil && s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, *product.ImageURL); err != nil {
			log.Printf("Failed to delete product image: %v", err)
		}
	}
	if s.search != nil {
		if err := s.search.DeleteProduct(id.String()); err != nil {
			log.Printf("Failed to remove product from search index: %v", err)
		}
	}
	return nil
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	return s.repo.GetByID(id)
}

func (s *inventoryService) ListProducts(category string, limit, offset int) ([]model.Product, int64, error) {
	return s.repo.List(category, limit, offset)
}

func (s *inventoryService) SearchProducts(query, category string, limit int) ([]map[string]interface{}, error) {
	if s.search == nil {
		return []map[string]interface{}{}, nil
	}
	return s.search.Search(query, category, limit)
}

func (s *inventoryService) UploadProductImage(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*model.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, r, "products", fileName)
	if err != nil {
		return nil, err
	}

	if product.ImageURL != nil {
		if err := s.imageStorage.DeleteImage(ctx, *product.ImageURL); err != nil {
			log.Printf("Failed to delete old product image: %v", err)
		}
	}

	product.ImageURL = &url
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	if err := s.repo.AdjustStock(id, delta); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.indexProduct(product)
	return product, nil
}

func (s *inventoryService) ReceiveBatch(ctx context.Context, productID uuid.UUID, input dto.ReceiveBatchRequest) (*model.StockBatch, error) {
	if _, err := s.repo.GetByID(productID); err != nil {
		return nil, err
	}

	batch := &model.StockBatch{
		ProductID:   productID,
		BatchNumber: input.BatchNumber,
		Quantity:    input.Quantity,
		ExpiryDate:  input.ExpiryDate,
	}
	if err := s.repo.CreateBatch(batch); err != nil {
		return nil, err
	}

	if _, err := s.AdjustStock(ctx, productID, input.Quantity); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *inventoryService) LowStockProducts() ([]model.Product, error) {
	return s.repo.LowStock()
}

func (s *inventoryService) ExpiringBatches(within time.Duration) ([]model.StockBatch, error) {
	return s.repo.ExpiringBatches(time.Now().Add(within))
}

func (s *inventoryService) indexProduct(product *model.Product) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexProduct(product); err != nil {
		log.Printf("Failed to index product %s: %v", product.ID, err)
	}
}
