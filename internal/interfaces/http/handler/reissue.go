package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/interfaces/http/dto"
)

// RegionReissuer reissues the flagged bills of one region
type RegionReissuer interface {
	RunRegion(ctx context.Context, regionID uuid.UUID) (*billing.BillRun, error)
}

// ReissueHandler starts bill reissues on demand
type ReissueHandler struct {
	BaseHandler
	reissuer RegionReissuer
}

// NewReissueHandler creates a new ReissueHandler
func NewReissueHandler(reissuer RegionReissuer) *ReissueHandler {
	return &ReissueHandler{reissuer: reissuer}
}

// RegisterRoutes registers the reissue routes
func (h *ReissueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/regions/:id/reissue", h.ReissueRegion)
}

// ReissueRegion handles POST /regions/:id/reissue. It responds with the bill
// run created for the reissue, or 204 when the region had no flagged bills.
func (h *ReissueHandler) ReissueRegion(c *gin.Context) {
	regionID, ok := h.BindURIID(c)
	if !ok {
		return
	}

	billRun, err := h.reissuer.RunRegion(c.Request.Context(), regionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if billRun == nil {
		h.NoContent(c)
		return
	}

	h.Success(c, dto.NewBillRunResponse(billRun))
}
