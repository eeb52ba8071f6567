package repository

import (
	"errors"
	"time"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyTotals is the rolled-up revenue for one day.
type DailyTotals struct {
	TransactionCount int64
	Revenue          float64
}

type SaleRepository interface {
	// CreateWithStock persists the sale and decrements each product's stock
	// in one transaction. Underflow aborts the whole sale.
	CreateWithStock(sale *model.Sale) error
	GetByID(id uuid.UUID) (*model.Sale, error)
	List(from, to time.Time, limit, offset int) ([]model.Sale, int64, error)
	Totals(from, to time.Time) (*DailyTotals, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateWithStock(sale *model.Sale) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperror.ErrInsufficientStock
			}
		}
		return tx.Create(sale).Error
	})
}

func (r *saleRepository) GetByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items.Product").
		Preload("Cashier", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "full_name")
		}).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(from, to time.Time, limit, offset int) ([]model.Sale, int64, error) {
	query := r.db.Model(&model.Sale{})
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := query.Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Preload("Items").
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepository) Totals(from, to time.Time) (*DailyTotals, error) {
	var totals DailyTotals
	err := r.db.Model(&model.Sale{}).
		Select("count(*) as transaction_count, coalesce(sum(total), 0) as revenue").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
