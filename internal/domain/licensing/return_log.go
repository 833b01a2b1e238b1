package licensing

import (
	"encoding/json"
	"time"
)

// ReturnLog is a licence holder's abstraction return for a period
type ReturnLog struct {
	ID            string
	LicenceRef    string
	StartDate     time.Time
	EndDate       time.Time
	TwoPartTariff bool
	Licence       *Licence
}

type returnMetadata struct {
	IsTwoPartTariff bool `json:"isTwoPartTariff"`
}

// TwoPartTariffFromMetadata reads the two-part tariff indicator from return
// log metadata. Missing or malformed metadata means not two-part tariff.
func TwoPartTariffFromMetadata(metadata []byte) bool {
	if len(metadata) == 0 {
		return false
	}
	var m returnMetadata
	if err := json.Unmarshal(metadata, &m); err != nil {
		return false
	}
	return m.IsTwoPartTariff
}
