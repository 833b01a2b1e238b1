package licensing

import "time"

// ImportedLicence carries the end dates of a licence as last imported from NALD
type ImportedLicence struct {
	ExpiredDate *time.Time `json:"expiredDate"`
	LapsedDate  *time.Time `json:"lapsedDate"`
	RevokedDate *time.Time `json:"revokedDate"`
}

// ChangedEndDates returns the earliest date affected by differences between the
// imported and persisted end dates, or nil when nothing changed
func (i ImportedLicence) ChangedEndDates(licence *Licence) *time.Time {
	pairs := [][2]*time.Time{
		{i.ExpiredDate, licence.ExpiredDate},
		{i.LapsedDate, licence.LapsedDate},
		{i.RevokedDate, licence.RevokedDate},
	}

	var changed []*time.Time
	for _, p := range pairs {
		if sameDate(p[0], p[1]) {
			continue
		}
		changed = append(changed, p[0], p[1])
	}
	return earliest(changed...)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
