package service

import (
	"encoding/json"
	"log"

	"anoa.com/apotekpos/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

const productIndex = "products"

// meiliProductDoc is the flattened product document stored in Meilisearch.
type meiliProductDoc struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	GenericName string  `json:"generic_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	SupplierID  string  `json:"supplier_id,omitempty"`
}

// ProductSearchService maintains the Meilisearch product index used by the
// POS quick-search box (name, generic name, SKU).
type ProductSearchService interface {
	IndexProduct(product *model.Product) error
	DeleteProduct(id string) error
	Search(query, category string, limit int) ([]map[string]interface{}, error)
}

type productSearchService struct {
	client meilisearch.ServiceManager
}

func NewProductSearchService(client meilisearch.ServiceManager) ProductSearchService {
	s := &productSearchService{client: client}
	s.initIndex()
	return s
}

func (s *productSearchService) initIndex() {
	filterable := []any{"category", "supplier_id"}
	if _, err := s.client.Index(productIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update products filterable attributes: %v", err)
	}

	searchable := []string{"name", "generic_name", "sku"}
	if _, err := s.client.Index(productIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update products searchable attributes: %v", err)
	}
}

func (s *productSearchService) IndexProduct(product *model.Product) error {
	doc := meiliProductDoc{
		ID:          product.ID.String(),
		SKU:         product.SKU,
		Name:        product.Name,
		GenericName: product.GenericName,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
	}
	if product.SupplierID != nil {
		doc.SupplierID = product.SupplierID.String()
	}

	_, err := s.client.Index(productIndex).AddDocuments([]meiliProductDoc{doc}, strPtr("id"))
	return err
}

func (s *productSearchService) DeleteProduct(id string) error {
	_, err := s.client.Index(productIndex).DeleteDocument(id)
	return err
}

func (s *productSearchService) Search(query, category string, limit int) ([]map[string]interface{}, error) {
	req := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	if category != "" {
		req.Filter = "category = '" + category + "'"
	}

	resp, err := s.client.Index(productIndex).Search(query, req)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON to stay independent of the client's hit type.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var hits []map[string]interface{}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func strPtr(s string) *string {
	return &s
}
