package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Remover removes a record by ID
type Remover interface {
	Go(ctx context.Context, id uuid.UUID) error
}

// BillHandler removes bills and bill licences from bill runs in review
type BillHandler struct {
	BaseHandler
	billRemover        Remover
	billLicenceRemover Remover
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billRemover, billLicenceRemover Remover) *BillHandler {
	return &BillHandler{
		billRemover:        billRemover,
		billLicenceRemover: billLicenceRemover,
	}
}

// RegisterRoutes registers the bill routes
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/bills/:id", h.RemoveBill)
	rg.DELETE("/bill-licences/:id", h.RemoveBillLicence)
}

// RemoveBill handles DELETE /bills/:id
func (h *BillHandler) RemoveBill(c *gin.Context) {
	h.remove(c, h.billRemover)
}

// RemoveBillLicence handles DELETE /bill-licences/:id
func (h *BillHandler) RemoveBillLicence(c *gin.Context) {
	h.remove(c, h.billLicenceRemover)
}

func (h *BillHandler) remove(c *gin.Context, remover Remover) {
	id, ok := h.BindURIID(c)
	if !ok {
		return
	}

	if err := remover.Go(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
