package dto

import "time"

type CreateProductRequest struct {
	SKU           string  `json:"sku" binding:"required,min=3,max=50"`
	Name          string  `json:"name" binding:"required,min=3,max=150"`
	GenericName   string  `json:"generic_name" binding:"omitempty,max=150"`
	Category      string  `json:"category" binding:"omitempty,max=50"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	CostPrice     float64 `json:"cost_price" binding:"omitempty,gte=0"`
	Stock         int     `json:"stock" binding:"omitempty,gte=0"`
	ReorderLevel  int     `json:"reorder_level" binding:"omitempty,gte=0"`
	CriticalLevel int     `json:"critical_level" binding:"omitempty,gte=0"`
	SupplierID    *string `json:"supplier_id" binding:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=3,max=150"`
	GenericName   *string  `json:"generic_name" binding:"omitempty,max=150"`
	Category      *string  `json:"category" binding:"omitempty,max=50"`
	Price         *float64 `json:"price" binding:"omitempty,gt=0"`
	CostPrice     *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	ReorderLevel  *int     `json:"reorder_level" binding:"omitempty,gte=0"`
	CriticalLevel *int     `json:"critical_level" binding:"omitempty,gte=0"`
	SupplierID    *string  `json:"supplier_id" binding:"omitempty,uuid"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

type ReceiveBatchRequest struct {
	BatchNumber string    `json:"batch_number" binding:"required,max=50"`
	Quantity    int       `json:"quantity" binding:"required,gt=0"`
	ExpiryDate  time.Time `json:"expiry_date" binding:"required"`
}
