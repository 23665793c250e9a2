package classify

import "strings"

// Routing is the coarse forward-destination decision derived before final
// classification.
type Routing string

const (
	RoutingAyr     Routing = "forward_to_ayr"
	RoutingOz      Routing = "forward_to_oz"
	RoutingUnknown Routing = "unknown"
)

// Importance grades how urgently a mail piece needs attention.
type Importance string

const (
	ImportanceCriticalForward Importance = "CRITICAL_FORWARD"
	ImportanceHighForward     Importance = "HIGH_FORWARD"
	ImportanceNormal          Importance = "NORMAL"
	ImportanceDigitalOnly     Importance = "DIGITAL_ONLY"
)

// AutoAction is the model's suggested disposition for a piece that needs no
// physical forwarding.
type AutoAction string

const (
	AutoActionArchive AutoAction = "archive_digital"
	AutoActionNone    AutoAction = "none"
)

// RawRecord is one logical mail piece as extracted by the model, before any
// derivation. Enum-shaped fields are validated with the Parse helpers at the
// extraction boundary rather than trusted at use sites.
type RawRecord struct {
	RecipientName      string
	DeliveryAddress    string
	Sender             string
	DocumentType       string
	DocumentDate       string
	AccountOrReference string
	RawReferenceText   string
	Confidence         float64
	Importance         Importance
	AutoAction         AutoAction
}

// ParseImportance validates a model-provided importance value, defaulting
// unknown or missing values to NORMAL.
func ParseImportance(value string) Importance {
	switch Importance(strings.ToUpper(strings.TrimSpace(value))) {
	case ImportanceCriticalForward:
		return ImportanceCriticalForward
	case ImportanceHighForward:
		return ImportanceHighForward
	case ImportanceDigitalOnly:
		return ImportanceDigitalOnly
	default:
		return ImportanceNormal
	}
}

// ParseAutoAction validates a model-provided auto-action value, defaulting
// unknown or missing values to none.
func ParseAutoAction(value string) AutoAction {
	switch AutoAction(strings.ToLower(strings.TrimSpace(value))) {
	case AutoActionArchive:
		return AutoActionArchive
	default:
		return AutoActionNone
	}
}

// Urgent reports whether an importance grade should trigger the
// urgency-keyword routing fallback and the escalation override.
func (i Importance) Urgent() bool {
	return i == ImportanceCriticalForward || i == ImportanceHighForward
}
