package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sale struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string     `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	CashierID     uuid.UUID  `gorm:"type:uuid;not null" json:"cashier_id"`
	Cashier       *User      `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	Subtotal      float64    `gorm:"not null" json:"subtotal"`
	Discount      float64    `gorm:"default:0" json:"discount"`
	Total         float64    `gorm:"not null" json:"total"`
	PaymentMethod string     `gorm:"size:20;default:'cash'" json:"payment_method"`
	Items         []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	LineTotal float64   `gorm:"not null" json:"line_total"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
