package billing

// Scheme identifies the charging scheme a record belongs to
type Scheme string

const (
	// SchemeAlcs is the pre-SROC scheme
	SchemeAlcs Scheme = "alcs"
	// SchemeSroc is the Strategic Review of Charges scheme
	SchemeSroc Scheme = "sroc"
)

// String returns the string representation of Scheme
func (s Scheme) String() string {
	return string(s)
}

// IsValid returns true if the scheme is known
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeAlcs, SchemeSroc:
		return true
	}
	return false
}

// BatchType identifies the kind of bill run
type BatchType string

const (
	BatchTypeAnnual        BatchType = "annual"
	BatchTypeSupplementary BatchType = "supplementary"
	BatchTypeTwoPartTariff BatchType = "two_part_tariff"
)

// String returns the string representation of BatchType
func (b BatchType) String() string {
	return string(b)
}

// BillRunStatus is the lifecycle status of a bill run
type BillRunStatus string

const (
	BillRunStatusQueued     BillRunStatus = "queued"
	BillRunStatusProcessing BillRunStatus = "processing"
	BillRunStatusReview     BillRunStatus = "review"
	BillRunStatusReady      BillRunStatus = "ready"
	BillRunStatusSent       BillRunStatus = "sent"
	BillRunStatusEmpty      BillRunStatus = "empty"
	BillRunStatusError      BillRunStatus = "error"
	BillRunStatusCancel     BillRunStatus = "cancel"
)

// String returns the string representation of BillRunStatus
func (s BillRunStatus) String() string {
	return string(s)
}

// SupplementaryRelevantStatuses are the statuses in which a bill run counts as
// having billed its financial year for supplementary purposes
var SupplementaryRelevantStatuses = []BillRunStatus{
	BillRunStatusSent,
	BillRunStatusReady,
	BillRunStatusReview,
}

// IsSupplementaryRelevant returns true if a bill run in this status has billed its year
func (s BillRunStatus) IsSupplementaryRelevant() bool {
	for _, status := range SupplementaryRelevantStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ExistingBillRunBatchTypes returns the batch types whose bill runs mean a
// financial year has already been billed
func ExistingBillRunBatchTypes(twoPartTariff bool) []BatchType {
	if twoPartTariff {
		return []BatchType{BatchTypeAnnual, BatchTypeTwoPartTariff}
	}
	return []BatchType{BatchTypeAnnual}
}
