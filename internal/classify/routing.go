package classify

import "strings"

// Destination address fragments for the two forwarding depots. The sets are
// disjoint; matching is case-insensitive substring on the delivery address.
var (
	ayrAddressMarkers = []string{
		"10 uist wynd",
		"uist wynd",
		"ka8 0ss",
	}
	ozAddressMarkers = []string{
		"n17 6ly",
		"willoughby lane",
	}
)

// Recipient-name fallback sets, consulted only when no address marker hits.
var (
	ayrRecipients = []string{
		"senga dougall",
		"callum dougall",
	}
	ozRecipients = []string{
		"nishant dougall",
		"priya dougall",
	}
)

// urgencyKeywords trigger the last-resort routing fallback for HIGH/CRITICAL
// importance mail whose destination could not be resolved.
var urgencyKeywords = []string{"bill", "tax", "invoice", "demand", "legal", "notice"}

// ResolveRouting derives the forward destination from a raw record.
//
// Precedence, strictly in this order: destination address match, recipient
// name match, urgency-keyword fallback (unresolved routing with HIGH/CRITICAL
// importance only), unknown. An address match always wins over a name match;
// never invert this order.
func ResolveRouting(record RawRecord) Routing {
	address := strings.ToLower(record.DeliveryAddress)
	if address != "" {
		if containsAny(address, ayrAddressMarkers) {
			return RoutingAyr
		}
		if containsAny(address, ozAddressMarkers) {
			return RoutingOz
		}
	}

	recipient := strings.ToLower(record.RecipientName)
	if recipient != "" {
		if containsAny(recipient, ayrRecipients) {
			return RoutingAyr
		}
		if containsAny(recipient, ozRecipients) {
			return RoutingOz
		}
	}

	if record.Importance.Urgent() {
		haystack := strings.ToLower(record.DocumentType + " " + record.Sender + " " + record.RawReferenceText)
		if containsAny(haystack, urgencyKeywords) {
			return RoutingAyr
		}
	}

	return RoutingUnknown
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
