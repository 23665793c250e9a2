package classify

import "testing"

func TestResolveRoutingAddressMatch(t *testing.T) {
	record := RawRecord{DeliveryAddress: "10 Uist Wynd, Ayr, KA8 0SS"}
	if got := ResolveRouting(record); got != RoutingAyr {
		t.Fatalf("routing = %q, want %q", got, RoutingAyr)
	}
}

func TestResolveRoutingAddressWinsOverName(t *testing.T) {
	// The name alone would also resolve to oz; the address must be the
	// deciding signal so a conflict-masking bug cannot hide behind agreement.
	record := RawRecord{
		RecipientName:   "Nishant Dougall",
		DeliveryAddress: "Flat 2, Willoughby Lane, London N17 6LY",
	}
	if got := ResolveRouting(record); got != RoutingOz {
		t.Fatalf("routing = %q, want %q", got, RoutingOz)
	}

	// Conflicting fixtures: ayr address with an oz recipient.
	conflict := RawRecord{
		RecipientName:   "Nishant Dougall",
		DeliveryAddress: "10 Uist Wynd",
	}
	if got := ResolveRouting(conflict); got != RoutingAyr {
		t.Fatalf("address-based routing must win, got %q", got)
	}
}

func TestResolveRoutingNameFallback(t *testing.T) {
	record := RawRecord{RecipientName: "Senga Dougall", DeliveryAddress: "1 Somewhere Else"}
	if got := ResolveRouting(record); got != RoutingAyr {
		t.Fatalf("routing = %q, want %q", got, RoutingAyr)
	}
}

func TestResolveRoutingUrgencyFallback(t *testing.T) {
	record := RawRecord{
		DocumentType: "Final demand",
		Importance:   ImportanceCriticalForward,
	}
	if got := ResolveRouting(record); got != RoutingAyr {
		t.Fatalf("urgency fallback should fire, got %q", got)
	}

	// Same keywords without urgency stay unresolved.
	record.Importance = ImportanceNormal
	if got := ResolveRouting(record); got != RoutingUnknown {
		t.Fatalf("fallback fired without urgency: %q", got)
	}
}

func TestResolveRoutingUnknown(t *testing.T) {
	record := RawRecord{Sender: "Somebody", DeliveryAddress: "99 Elsewhere Road"}
	if got := ResolveRouting(record); got != RoutingUnknown {
		t.Fatalf("routing = %q, want %q", got, RoutingUnknown)
	}
}
