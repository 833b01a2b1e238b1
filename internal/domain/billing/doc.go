// Package billing provides domain models for supplementary billing and bill reissue.
//
// This package implements the billing bounded context, which is responsible for:
//   - Resolving dates into regulatory financial years (1 April to 31 March)
//   - Describing which supplementary flags a licence change raises
//   - Bill runs, bills, bill licences and transactions
//   - Licence supplementary years: the per-year markers picked up by the next
//     qualifying bill run
//   - Generating the reversal and rebill bills that replace a bill flagged for rebilling
//
// Key Aggregates:
//   - BillRun: A generated set of bills for a region and financial year
//   - Bill: A bill for one billing account inside a bill run
//   - LicenceSupplementaryYear: A year a licence must be reconsidered in
//
// Value Objects:
//   - Flags / FlagIntent: Supplementary billing flags raised by a licence change
//   - FinancialYear: A 1 April to 31 March window
//
// The billing domain integrates with:
//   - Licensing domain: licences, charge versions and return logs are the triggers
//     that raise supplementary flags
package billing
