// Package reissue regenerates SROC bills flagged for rebilling.
//
// Each flagged bill is replaced by a reversal bill that credits it and a rebill
// bill that charges it again, both placed in a new supplementary bill run.
// ReissueRunner drives this per region under a distributed lock.
package reissue
