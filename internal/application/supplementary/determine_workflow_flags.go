package supplementary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
)

// DetermineWorkflowFlagsService works out the flags raised when a licence enters
// or leaves the charge information workflow.
//
// Workflows only ever produce SROC charge information, so the affected range
// starts at the later of the licence start and the SROC start date and pre-SROC
// is never raised.
type DetermineWorkflowFlagsService struct {
	workflowRepo licensing.WorkflowRepository
	now          func() time.Time
}

// NewDetermineWorkflowFlagsService creates a new DetermineWorkflowFlagsService
func NewDetermineWorkflowFlagsService(workflowRepo licensing.WorkflowRepository, now func() time.Time) *DetermineWorkflowFlagsService {
	if now == nil {
		now = time.Now
	}
	return &DetermineWorkflowFlagsService{
		workflowRepo: workflowRepo,
		now:          now,
	}
}

// Go returns the flag intent for the workflow's licence
func (s *DetermineWorkflowFlagsService) Go(ctx context.Context, workflowID uuid.UUID) (*billing.FlagIntent, error) {
	workflow, err := s.workflowRepo.FindWithLicence(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("fetch workflow %s: %w", workflowID, err)
	}
	if workflow.Licence == nil {
		return nil, fmt.Errorf("workflow %s has no licence", workflowID)
	}

	licence := workflow.Licence
	startDate := licence.StartDate
	if startDate.Before(billing.SrocStartDate) {
		startDate = billing.SrocStartDate
	}

	if billing.StartsAfterCurrentFinancialYear(startDate, s.now()) {
		return nil, nil
	}

	summary := licensing.SummariseChargeVersions(workflow.ChargeVersions)
	computed := billing.Flags{
		Sroc:          summary.HasSrocStandard,
		TwoPartTariff: summary.HasSrocTwoPartTariff,
	}

	return &billing.FlagIntent{
		LicenceID: licence.ID,
		RegionID:  licence.RegionID,
		StartDate: startDate,
		EndDate:   licence.EndDate(),
		Flags:     billing.MergeFlags(licence.CurrentFlags(), computed),
	}, nil
}
