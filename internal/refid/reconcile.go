package refid

import (
	"strings"

	"github.com/google/uuid"

	"mailroom/internal/textutil"
)

const (
	minRefLen = 4
	maxRefLen = 9

	// Typical reference length; filename runs in this band are preferred.
	preferredMinLen = 5
	preferredMaxLen = 7

	// GeneratedPrefix marks synthesized identifiers.
	GeneratedPrefix = "GEN-"
)

// absentTokens are model outputs that mean "no reference", compared
// case-insensitively after normalization.
var absentTokens = map[string]struct{}{
	"":            {},
	"null":        {},
	"none":        {},
	"n/a":         {},
	"unknown":     {},
	"unknown_ref": {},
	"undefined":   {},
	"ref":         {},
	"id":          {},
}

// Reconcile resolves the canonical item reference for a record.
//
// Resolution order: a digit run embedded in the source filename wins
// outright; otherwise the normalized model reference is used; otherwise a
// GEN- token is synthesized. The generated flag reports whether the
// synthesis fallback was hit.
func Reconcile(modelReference, fileName string) (id string, generated bool) {
	if fromFile := fromFileName(fileName); fromFile != "" {
		return fromFile, false
	}
	if normalized := NormalizeReference(modelReference); normalized != "" {
		return normalized, false
	}
	return GeneratedPrefix + uuid.NewString()[:8], true
}

// NormalizeReference cleans a model-provided reference string. It strips
// quote characters and whitespace, rejects absent-marker tokens, and
// compacts digit-and-whitespace strings (optical recognition tends to split
// digit groups). Returns "" when no usable reference remains.
func NormalizeReference(value string) string {
	cleaned := strings.TrimSpace(strings.Map(stripQuote, value))
	if _, absent := absentTokens[strings.ToLower(cleaned)]; absent {
		return ""
	}
	if digitsAndSpaceOnly(cleaned) {
		compact := strings.Join(strings.Fields(cleaned), "")
		if len(compact) < minRefLen || len(compact) > maxRefLen {
			return ""
		}
		return compact
	}
	return cleaned
}

func fromFileName(fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		return ""
	}
	if preferred := textutil.FirstDigitRun(fileName, preferredMinLen, preferredMaxLen); preferred != "" {
		return preferred
	}
	return textutil.FirstDigitRun(fileName, preferredMinLen, maxRefLen)
}

func stripQuote(r rune) rune {
	switch r {
	case '"', '\'', '`', '“', '”', '‘', '’':
		return -1
	}
	return r
}

func digitsAndSpaceOnly(value string) bool {
	if value == "" {
		return false
	}
	sawDigit := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			sawDigit = true
		case r == ' ' || r == '\t':
		default:
			return false
		}
	}
	return sawDigit
}
