// Package classify maps raw extraction records to routing decisions and
// final classifications.
//
// Everything in this package is a pure function of the record fields:
// resolving the same record twice always yields the same routing,
// classification, and suggested filename. Routing resolution follows a strict
// precedence (destination address match over recipient-name match over the
// urgency-keyword fallback over unknown) and the classification ladder is
// evaluated top-down with an urgency override applied last. Keep it that way;
// the tests pin the ordering.
package classify
