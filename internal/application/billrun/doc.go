// Package billrun removes bills and bill licences from bill runs that are still
// ready or in review. Removed licences are handed back to supplementary billing:
// two-part tariff runs release their supplementary years, other runs re-flag
// the licence for the run's scheme.
package billrun
