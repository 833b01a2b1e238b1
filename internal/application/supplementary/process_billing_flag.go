package supplementary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
	"github.com/wrls/backend/internal/domain/licensing"
	"github.com/wrls/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ChargeVersionFlagDeterminer determines the flags for a charge version
type ChargeVersionFlagDeterminer interface {
	Go(ctx context.Context, chargeVersionID uuid.UUID) (*billing.FlagIntent, error)
}

// ReturnLogFlagDeterminer determines the flags for a return log
type ReturnLogFlagDeterminer interface {
	Go(ctx context.Context, returnLogID string) (*billing.FlagIntent, error)
}

// WorkflowFlagDeterminer determines the flags for a workflow
type WorkflowFlagDeterminer interface {
	Go(ctx context.Context, workflowID uuid.UUID) (*billing.FlagIntent, error)
}

// ImportedLicenceFlagDeterminer determines the flags for an imported licence
type ImportedLicenceFlagDeterminer interface {
	Go(ctx context.Context, licenceID uuid.UUID, imported licensing.ImportedLicence) (*billing.FlagIntent, error)
}

// ExistingBillRunYearsFinder narrows years to those already billed
type ExistingBillRunYearsFinder interface {
	Go(ctx context.Context, regionID uuid.UUID, years []int, twoPartTariff bool) ([]int, error)
}

// FlagPersister writes supplementary flags
type FlagPersister interface {
	Go(ctx context.Context, twoPartTariffYears []int, preSroc, sroc bool, licenceID uuid.UUID) error
}

// FlagMetrics records the outcome of processing a billing flag
type FlagMetrics interface {
	RecordProcessed(ctx context.Context, trigger string, elapsed time.Duration)
	RecordFailure(ctx context.Context, trigger string)
}

type noopFlagMetrics struct{}

func (noopFlagMetrics) RecordProcessed(context.Context, string, time.Duration) {}
func (noopFlagMetrics) RecordFailure(context.Context, string)                  {}

// ProcessBillingFlagServiceDeps are the collaborators of ProcessBillingFlagService
type ProcessBillingFlagServiceDeps struct {
	ChargeVersion   ChargeVersionFlagDeterminer
	ReturnLog       ReturnLogFlagDeterminer
	Workflow        WorkflowFlagDeterminer
	ImportedLicence ImportedLicenceFlagDeterminer
	ExistingYears   ExistingBillRunYearsFinder
	Persister       FlagPersister
	Notifier        shared.Notifier
	Metrics         FlagMetrics
	Tracer          trace.Tracer
	Now             func() time.Time
}

// ProcessBillingFlagService is the entry point for flagging a licence change for
// supplementary billing. It never fails its caller: errors are reported through
// the notifier and dropped.
type ProcessBillingFlagService struct {
	chargeVersion   ChargeVersionFlagDeterminer
	returnLog       ReturnLogFlagDeterminer
	workflow        WorkflowFlagDeterminer
	importedLicence ImportedLicenceFlagDeterminer
	existingYears   ExistingBillRunYearsFinder
	persister       FlagPersister
	notifier        shared.Notifier
	metrics         FlagMetrics
	tracer          trace.Tracer
	now             func() time.Time
}

// NewProcessBillingFlagService creates a new ProcessBillingFlagService
func NewProcessBillingFlagService(deps ProcessBillingFlagServiceDeps) *ProcessBillingFlagService {
	if deps.Metrics == nil {
		deps.Metrics = noopFlagMetrics{}
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("supplementary")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &ProcessBillingFlagService{
		chargeVersion:   deps.ChargeVersion,
		returnLog:       deps.ReturnLog,
		workflow:        deps.Workflow,
		importedLicence: deps.ImportedLicence,
		existingYears:   deps.ExistingYears,
		persister:       deps.Persister,
		notifier:        deps.Notifier,
		metrics:         deps.Metrics,
		tracer:          deps.Tracer,
		now:             deps.Now,
	}
}

// Go flags the licence change named by payload. A payload that names no
// trigger is ignored.
func (s *ProcessBillingFlagService) Go(ctx context.Context, payload Payload) {
	trigger := TriggerFromPayload(payload)
	if trigger == nil {
		return
	}

	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "supplementary.process_billing_flag",
		trace.WithAttributes(attribute.String("trigger", trigger.Kind())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, span, trigger, payload, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.process(ctx, trigger); err != nil {
		s.fail(ctx, span, trigger, payload, err)
		return
	}

	elapsed := time.Since(started)
	s.metrics.RecordProcessed(ctx, trigger.Kind(), elapsed)
	s.notifier.Omg("Supplementary billing flag processed", map[string]any{
		"trigger":     trigger.Kind(),
		"timeTakenMs": elapsed.Milliseconds(),
	})
}

func (s *ProcessBillingFlagService) process(ctx context.Context, trigger Trigger) error {
	intent, err := s.determine(ctx, trigger)
	if err != nil {
		return err
	}
	if intent == nil {
		return nil
	}

	var years []int
	if intent.Flags.TwoPartTariff {
		candidates := intent.TwoPartTariffYears(s.now())
		if len(candidates) == 0 {
			return nil
		}

		years, err = s.existingYears.Go(ctx, intent.RegionID, candidates, true)
		if err != nil {
			return err
		}
	}

	return s.persister.Go(ctx, years, intent.Flags.PreSroc, intent.Flags.Sroc, intent.LicenceID)
}

func (s *ProcessBillingFlagService) determine(ctx context.Context, trigger Trigger) (*billing.FlagIntent, error) {
	switch t := trigger.(type) {
	case ImportedLicenceTrigger:
		return s.importedLicence.Go(ctx, t.LicenceID, t.ImportedLicence)
	case ChargeVersionTrigger:
		return s.chargeVersion.Go(ctx, t.ChargeVersionID)
	case ReturnLogTrigger:
		return s.returnLog.Go(ctx, t.ReturnLogID)
	case WorkflowTrigger:
		return s.workflow.Go(ctx, t.WorkflowID)
	default:
		return nil, fmt.Errorf("unsupported trigger %T", trigger)
	}
}

func (s *ProcessBillingFlagService) fail(ctx context.Context, span trace.Span, trigger Trigger, payload Payload, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.RecordFailure(ctx, trigger.Kind())
	s.notifier.Omfg("Supplementary Billing Flag failed", payload, err)
}
