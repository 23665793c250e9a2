package extraction

import (
	"encoding/json"
	"strings"

	"mailroom/internal/classify"
	"mailroom/internal/services"
)

const extractionSystemPrompt = `You are a mail-room document analyst. The user sends one scanned mail item
(PDF or image) which may contain several distinct letters. For each letter,
extract the fields below. Respond with a JSON array only, no prose, one
object per letter:

[{
  "recipient_name": "",
  "delivery_address": "",
  "sender": "",
  "document_type": "",
  "document_date": "YYYY-MM-DD",
  "account_or_reference": "",
  "raw_reference_text": "",
  "importance": "CRITICAL_FORWARD | HIGH_FORWARD | NORMAL | DIGITAL_ONLY",
  "auto_action": "archive_digital | none",
  "confidence": 0.0
}]

Leave a field empty when it is not present. Never invent values.`

// recordPayload mirrors the model's JSON response shape. Enum-shaped fields
// arrive as free text and are validated here rather than trusted downstream.
type recordPayload struct {
	RecipientName      string  `json:"recipient_name"`
	DeliveryAddress    string  `json:"delivery_address"`
	Sender             string  `json:"sender"`
	DocumentType       string  `json:"document_type"`
	DocumentDate       string  `json:"document_date"`
	AccountOrReference string  `json:"account_or_reference"`
	RawReferenceText   string  `json:"raw_reference_text"`
	Importance         string  `json:"importance"`
	AutoAction         string  `json:"auto_action"`
	Confidence         float64 `json:"confidence"`
}

func parseRecords(payload string) ([]classify.RawRecord, error) {
	cleaned := stripCodeFence(payload)
	var parsed []recordPayload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "extraction", "parse", "model response is not a JSON array", err)
	}
	if len(parsed) == 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "extraction", "parse", "model found no mail pieces", nil)
	}

	records := make([]classify.RawRecord, 0, len(parsed))
	for _, entry := range parsed {
		confidence := entry.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		records = append(records, classify.RawRecord{
			RecipientName:      strings.TrimSpace(entry.RecipientName),
			DeliveryAddress:    strings.TrimSpace(entry.DeliveryAddress),
			Sender:             strings.TrimSpace(entry.Sender),
			DocumentType:       strings.TrimSpace(entry.DocumentType),
			DocumentDate:       strings.TrimSpace(entry.DocumentDate),
			AccountOrReference: strings.TrimSpace(entry.AccountOrReference),
			RawReferenceText:   strings.TrimSpace(entry.RawReferenceText),
			Confidence:         confidence,
			Importance:         classify.ParseImportance(entry.Importance),
			AutoAction:         classify.ParseAutoAction(entry.AutoAction),
		})
	}
	return records, nil
}

// stripCodeFence tolerates models that wrap JSON in a markdown fence despite
// the instructions.
func stripCodeFence(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
