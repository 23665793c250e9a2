package classify

import (
	"fmt"
	"strings"
	"time"

	"mailroom/internal/textutil"
)

// Classification is the final user-facing bucket for a mail piece.
type Classification string

const (
	ForwardAyr         Classification = "forward_ayr"
	ForwardOz          Classification = "forward_oz"
	DigitalStore       Classification = "digital_store"
	DigitalStoreAction Classification = "digital_store_action"
	Shred              Classification = "shred"
	Undetermined       Classification = "undetermined"
)

// classificationCodes are the short tokens embedded in suggested filenames.
var classificationCodes = map[Classification]string{
	ForwardAyr:         "AYR",
	ForwardOz:          "OZ",
	DigitalStore:       "DIG",
	DigitalStoreAction: "ACT",
	Shred:              "SHRED",
	Undetermined:       "REVIEW",
}

// Code returns the short filename token for a classification.
func (c Classification) Code() string {
	if code, ok := classificationCodes[c]; ok {
		return code
	}
	return classificationCodes[Undetermined]
}

// Forwarding reports whether the classification routes physical mail to a
// depot.
func (c Classification) Forwarding() bool {
	return c == ForwardAyr || c == ForwardOz
}

// Map derives the final classification for a record. The ladder is evaluated
// top-down, first match wins, then the urgency override is applied: urgency
// escalates any non-forwarding result to the action-required digital bucket
// but never changes an already-resolved forwarding decision.
func Map(record RawRecord, routing Routing) Classification {
	classification := ladder(record, routing)
	if record.Importance.Urgent() && !classification.Forwarding() {
		return DigitalStoreAction
	}
	return classification
}

func ladder(record RawRecord, routing Routing) Classification {
	switch {
	case routing == RoutingAyr:
		return ForwardAyr
	case routing == RoutingOz:
		return ForwardOz
	case record.AutoAction == AutoActionArchive:
		return DigitalStore
	case record.Importance == ImportanceDigitalOnly:
		return Shred
	default:
		return Undetermined
	}
}

const (
	missingDatePlaceholder = "00000000"
	unknownPartyToken      = "Unknown"
)

// dateLayouts the extraction service has been observed to emit.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// SuggestedFilename builds the archival filename for a record:
// {dateCompact}_[{sender}]_[{recipient}]_[{code}]. Missing dates render as a
// zero placeholder and missing parties as a literal Unknown token.
func SuggestedFilename(record RawRecord, classification Classification) string {
	date := compactDate(record.DocumentDate)
	sender := partyToken(record.Sender)
	recipient := partyToken(record.RecipientName)
	name := fmt.Sprintf("%s_[%s]_[%s]_[%s]", date, sender, recipient, classification.Code())
	return textutil.SanitizeFileName(name)
}

func compactDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return missingDatePlaceholder
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("20060102")
		}
	}
	return missingDatePlaceholder
}

func partyToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return unknownPartyToken
	}
	return value
}
