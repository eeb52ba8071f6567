package dto

type SaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount      float64           `json:"discount" binding:"omitempty,gte=0"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,oneof=cash card qris"`
}
