package billing

import (
	"time"

	"github.com/google/uuid"
)

// Flags are the three supplementary billing flags a change can raise
type Flags struct {
	PreSroc       bool
	Sroc          bool
	TwoPartTariff bool
}

// Any returns true if at least one flag is raised
func (f Flags) Any() bool {
	return f.PreSroc || f.Sroc || f.TwoPartTariff
}

// MergeFlags combines persisted flags with freshly computed ones. A flag that
// is already raised stays raised.
func MergeFlags(existing, computed Flags) Flags {
	return Flags{
		PreSroc:       existing.PreSroc || computed.PreSroc,
		Sroc:          existing.Sroc || computed.Sroc,
		TwoPartTariff: existing.TwoPartTariff || computed.TwoPartTariff,
	}
}

// FlagIntent is the normalised result of inspecting a licence change
type FlagIntent struct {
	LicenceID uuid.UUID
	RegionID  uuid.UUID
	StartDate time.Time
	// EndDate is nil when the change is open ended
	EndDate *time.Time
	Flags   Flags
}

// TwoPartTariffYears returns the two-part tariff years the intent spans
func (i *FlagIntent) TwoPartTariffYears(now time.Time) []int {
	return TwoPartTariffYears(i.StartDate, i.EndDate, now)
}
