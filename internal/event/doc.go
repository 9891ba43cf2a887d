// Package event defines the canonical event record and its normalization.
//
// The event package turns a validated extraction candidate, its reconciled
// tickets, and its detail-page enrichment into the document the publishing
// sink and the read API serve. Normalization resolves the final date from
// whichever source supplied one, applies venue defaults for missing fields,
// and rolls midnight starts back to the previous calendar day.
package event
