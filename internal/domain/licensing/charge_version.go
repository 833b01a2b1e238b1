package licensing

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
)

// ChargeVersion is a time-bounded record of how a licence is charged
type ChargeVersion struct {
	ID               uuid.UUID
	LicenceID        uuid.UUID
	Scheme           billing.Scheme
	Status           string
	StartDate        time.Time
	EndDate          *time.Time
	ChargeReferences []ChargeReference
	Licence          *Licence
}

// HasTwoPartTariff returns true if any SROC charge reference is two-part tariff
func (cv *ChargeVersion) HasTwoPartTariff() bool {
	for _, ref := range cv.ChargeReferences {
		if ref.TwoPartTariff && ref.Scheme == billing.SchemeSroc {
			return true
		}
	}
	return false
}

// ChargeReference is an element of a charge version
type ChargeReference struct {
	ID              uuid.UUID
	ChargeVersionID uuid.UUID
	Scheme          billing.Scheme
	// TwoPartTariff is the section 127 adjustment
	TwoPartTariff bool
}

// ChargeVersionSummary condenses a licence's charge versions to the facts
// the workflow and imported licence rules need
type ChargeVersionSummary struct {
	HasAlcs              bool
	HasSroc              bool
	HasSrocTwoPartTariff bool
	HasSrocStandard      bool
}

// SummariseChargeVersions builds a ChargeVersionSummary
func SummariseChargeVersions(versions []ChargeVersion) ChargeVersionSummary {
	var summary ChargeVersionSummary
	for i := range versions {
		cv := &versions[i]
		switch cv.Scheme {
		case billing.SchemeAlcs:
			summary.HasAlcs = true
		case billing.SchemeSroc:
			summary.HasSroc = true
			if cv.HasTwoPartTariff() {
				summary.HasSrocTwoPartTariff = true
			} else {
				summary.HasSrocStandard = true
			}
		}
	}
	return summary
}
