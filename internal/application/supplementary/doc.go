// Package supplementary decides which financial years of a licence must be
// supplementary billed after a change, and records that decision.
//
// A change arrives as a Payload naming one trigger (an imported licence, a
// charge version, a return log or a workflow). ProcessBillingFlagService picks
// the matching determiner, narrows two-part tariff years to those already
// billed, and persists the resulting flags. Flags are only ever raised here.
package supplementary
