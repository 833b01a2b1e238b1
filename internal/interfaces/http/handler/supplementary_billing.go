package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/wrls/backend/internal/application/supplementary"
	"github.com/wrls/backend/internal/domain/shared"
	"github.com/wrls/backend/internal/interfaces/http/dto"
	"github.com/wrls/backend/internal/interfaces/http/middleware"
)

// SupplementaryBillingHandler accepts supplementary billing flag requests.
// Flagging runs in the background; the response only acknowledges the request.
type SupplementaryBillingHandler struct {
	BaseHandler
	publisher shared.EventPublisher
}

// NewSupplementaryBillingHandler creates a new SupplementaryBillingHandler
func NewSupplementaryBillingHandler(publisher shared.EventPublisher) *SupplementaryBillingHandler {
	return &SupplementaryBillingHandler{publisher: publisher}
}

// RegisterRoutes registers the supplementary billing routes
func (h *SupplementaryBillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/supplementary-billing/flags", h.RequestFlag)
}

// RequestFlag handles POST /supplementary-billing/flags
func (h *SupplementaryBillingHandler) RequestFlag(c *gin.Context) {
	var req dto.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payload := req.ToPayload()
	trigger := supplementary.TriggerFromPayload(payload)
	if trigger == nil {
		h.Error(c, dto.ErrCodeInvalidInput, "No supplementary billing trigger given")
		return
	}

	event := supplementary.NewFlagRequestedEvent(payload)
	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, dto.FlagAcceptedResponse{EventID: event.EventID(), Trigger: trigger.Kind()})
}
