package http

import (
	"net/http"
	"strconv"
	"time"

	"anoa.com/apotekpos/internal/modules/sale/dto"
	"anoa.com/apotekpos/internal/modules/sale/service"
	"anoa.com/apotekpos/pkg/response"
	appValidator "anoa.com/apotekpos/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(service service.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	cashierID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(err)})
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), cashierID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	sale, err := h.service.GetSale(id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	limit := 20
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = t.AddDate(0, 0, 1) // inclusive end date
		}
	}

	sales, total, err := h.service.ListSales(from, to, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales, "total": total})
}
