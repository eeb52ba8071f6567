package repository

import (
	"errors"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	GetByID(id uuid.UUID) (*model.Product, error)
	GetBySKU(sku string) (*model.Product, error)
	List(category string, limit, offset int) ([]model.Product, int64, error)
	// LowStock returns products at or under their reorder level.
	LowStock() ([]model.Product, error)
	// AdjustStock applies delta atomically and fails on underflow.
	AdjustStock(id uuid.UUID, delta int) error
	CreateBatch(batch *model.StockBatch) error
	// ExpiringBatches returns batches with stock left that expire before cutoff.
	ExpiringBatches(cutoff time.Time) ([]model.StockBatch, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepository) GetByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Supplier").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(category string, limit, offset int) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.Order("name asc").
		Limit(limit).
		Offset(offset).
		Preload("Supplier").
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) LowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock <= reorder_level").
		Order("stock asc").
		Preload("Supplier").
		Find(&products).Error
	return products, err
}

func (r *productRepository) AdjustStock(id uuid.UUID, delta int) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the product is gone or the decrement would go negative.
		var count int64
		if err := r.db.Model(&model.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperror.ErrNotFound
		}
		return apperror.ErrInsufficientStock
	}
	return nil
}

func (r *productRepository) CreateBatch(batch *model.StockBatch) error {
	return r.db.Create(batch).Error
}

func (r *productRepository) ExpiringBatches(cutoff time.Time) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	err := r.db.Where("expiry_date <= ? AND quantity > 0", cutoff).
		Order("expiry_date asc").
		Preload("Product").
		Find(&batches).Error
	return batches, err
}
