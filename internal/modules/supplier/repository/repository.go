package repository

import (
	"errors"

	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	Update(supplier *model.Supplier) error
	GetByID(id uuid.UUID) (*model.Supplier, error)
	List(limit, offset int) ([]model.Supplier, int64, error)
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *supplierRepository) Update(supplier *model.Supplier) error {
	return r.db.Save(supplier).Error
}

func (r *supplierRepository) GetByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.First(&supplier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) List(limit, offset int) ([]model.Supplier, int64, error) {
	var total int64
	if err := r.db.Model(&model.Supplier{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var suppliers []model.Supplier
	err := r.db.Order("name asc").
		Limit(limit).
		Offset(offset).
		Find(&suppliers).Error
	return suppliers, total, err
}
