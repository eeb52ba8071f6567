package service

import (
	"anoa.com/apotekpos/internal/model"
	"anoa.com/apotekpos/internal/modules/supplier/dto"
	supplierRepo "anoa.com/apotekpos/internal/modules/supplier/repository"
	"github.com/google/uuid"
)

type SupplierService interface {
	CreateSupplier(input dto.CreateSupplierRequest) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, input dto.UpdateSupplierRequest) (*model.Supplier, error)
	GetSupplier(id uuid.UUID) (*model.Supplier, error)
	ListSuppliers(limit, offset int) ([]model.Supplier, int64, error)
	// DeactivateSupplier soft-disables the supplier; purchase history keeps
	// referencing it, so suppliers are never hard-deleted.
	DeactivateSupplier(id uuid.UUID) error
}

type supplierService struct {
	repo supplierRepo.SupplierRepository
}

func NewSupplierService(repo supplierRepo.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) CreateSupplier(input dto.CreateSupplierRequest) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		IsActive: true,
	}
	if err := s.repo.Create(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(id uuid.UUID, input dto.UpdateSupplierRequest) (*model.Supplier, error) {
	supplier, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		supplier.Name = *input.Name
	}
	if input.Email != nil {
		supplier.Email = *input.Email
	}
	if input.Phone != nil {
		supplier.Phone = *input.Phone
	}
	if input.Address != nil {
		supplier.Address = *input.Address
	}
	if input.IsActive != nil {
		supplier.IsActive = *input.IsActive
	}

	if err := s.repo.Update(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) GetSupplier(id uuid.UUID) (*model.Supplier, error) {
	return s.repo.GetByID(id)
}

func (s *supplierService) ListSuppliers(limit, offset int) ([]model.Supplier, int64, error) {
	return s.repo.List(limit, offset)
}

func (s *supplierService) DeactivateSupplier(id uuid.UUID) error {
	supplier, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	supplier.IsActive = false
	return s.repo.Update(supplier)
}
