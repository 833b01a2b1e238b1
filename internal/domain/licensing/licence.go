package licensing

import (
	"time"

	"github.com/google/uuid"
	"github.com/wrls/backend/internal/domain/billing"
)

// PresrocBillingFlag is the tri-state pre-SROC supplementary flag of a licence
type PresrocBillingFlag string

const (
	PresrocBillingYes   PresrocBillingFlag = "yes"
	PresrocBillingNo    PresrocBillingFlag = "no"
	PresrocBillingUnset PresrocBillingFlag = ""
)

// Licence is an abstraction licence
type Licence struct {
	ID                      uuid.UUID
	LicenceRef              string
	RegionID                uuid.UUID
	StartDate               time.Time
	ExpiredDate             *time.Time
	LapsedDate              *time.Time
	RevokedDate             *time.Time
	IncludeInPresrocBilling PresrocBillingFlag
	IncludeInSrocBilling    bool
}

// CurrentFlags returns the supplementary flags already persisted on the licence
func (l *Licence) CurrentFlags() billing.Flags {
	return billing.Flags{
		PreSroc: l.IncludeInPresrocBilling == PresrocBillingYes,
		Sroc:    l.IncludeInSrocBilling,
	}
}

// EndDate returns the earliest of the expired, lapsed and revoked dates, or nil
func (l *Licence) EndDate() *time.Time {
	return earliest(l.ExpiredDate, l.LapsedDate, l.RevokedDate)
}

// LicenceFlagUpdate describes the supplementary flags to raise on a licence.
// False values leave the persisted flag untouched.
type LicenceFlagUpdate struct {
	PreSroc bool
	Sroc    bool
}

// IsEmpty returns true when nothing would be written
func (u LicenceFlagUpdate) IsEmpty() bool {
	return !u.PreSroc && !u.Sroc
}

func earliest(dates ...*time.Time) *time.Time {
	var result *time.Time
	for _, d := range dates {
		if d == nil {
			continue
		}
		if result == nil || d.Before(*result) {
			result = d
		}
	}
	return result
}
