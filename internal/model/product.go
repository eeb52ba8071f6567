package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SKU           string     `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	Name          string     `gorm:"size:150;not null" json:"name"`
	GenericName   string     `gorm:"size:150" json:"generic_name"`
	Category      string     `gorm:"size:50" json:"category"`
	Price         float64    `gorm:"not null" json:"price"`
	CostPrice     float64    `json:"cost_price"`
	Stock         int        `gorm:"default:0" json:"stock"`
	ReorderLevel  int        `gorm:"default:10" json:"reorder_level"`
	CriticalLevel int        `gorm:"default:5" json:"critical_level"`
	SupplierID    *uuid.UUID `gorm:"type:uuid" json:"supplier_id"`
	Supplier      *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	ImageURL      *string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StockBatch tracks one received lot of a product. Expiry scans walk
// batches, not products, because a product can hold lots with different
// expiry dates.
type StockBatch struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	BatchNumber string    `gorm:"size:50;not null" json:"batch_number"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	ExpiryDate  time.Time `gorm:"not null;index" json:"expiry_date"`
	ReceivedAt  time.Time `gorm:"autoCreateTime" json:"received_at"`
}

func (b *StockBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
