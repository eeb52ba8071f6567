package dto

type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required,min=3,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Address string `json:"address" binding:"omitempty,max=500"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=3,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	IsActive *bool   `json:"is_active"`
}
