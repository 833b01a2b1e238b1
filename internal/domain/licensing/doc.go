// Package licensing provides the read model of abstraction licences used by
// supplementary billing.
//
// Licences, charge versions, return logs and workflows are owned by other
// services. This package describes only the attributes supplementary billing
// reads from them, plus the two supplementary flags it writes back to the
// licence.
package licensing
