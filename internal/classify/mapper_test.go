package classify

import "testing"

func TestMapLadder(t *testing.T) {
	cases := []struct {
		name    string
		record  RawRecord
		routing Routing
		want    Classification
	}{
		{"ayr routing", RawRecord{}, RoutingAyr, ForwardAyr},
		{"oz routing", RawRecord{}, RoutingOz, ForwardOz},
		{"archive action", RawRecord{AutoAction: AutoActionArchive}, RoutingUnknown, DigitalStore},
		{"digital only shreds", RawRecord{Importance: ImportanceDigitalOnly}, RoutingUnknown, Shred},
		{"nothing resolves", RawRecord{}, RoutingUnknown, Undetermined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Map(tc.record, tc.routing); got != tc.want {
				t.Fatalf("Map = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapUrgencyEscalation(t *testing.T) {
	// Undetermined and shred escalate to the action bucket under urgency.
	for _, importance := range []Importance{ImportanceCriticalForward, ImportanceHighForward} {
		record := RawRecord{Importance: importance}
		if got := Map(record, RoutingUnknown); got != DigitalStoreAction {
			t.Fatalf("importance %s: Map = %q, want %q", importance, got, DigitalStoreAction)
		}
	}

	// A resolved forwarding decision never changes.
	record := RawRecord{Importance: ImportanceCriticalForward}
	if got := Map(record, RoutingAyr); got != ForwardAyr {
		t.Fatalf("forwarding result must survive urgency, got %q", got)
	}
	if got := Map(record, RoutingOz); got != ForwardOz {
		t.Fatalf("forwarding result must survive urgency, got %q", got)
	}
}

func TestMapDeterminism(t *testing.T) {
	record := RawRecord{
		RecipientName:   "Senga Dougall",
		DeliveryAddress: "10 Uist Wynd",
		Sender:          "HMRC",
		DocumentDate:    "2025-07-08",
		Importance:      ImportanceHighForward,
	}
	routing := ResolveRouting(record)
	first := Map(record, routing)
	firstName := SuggestedFilename(record, first)
	for i := 0; i < 5; i++ {
		if got := Map(record, ResolveRouting(record)); got != first {
			t.Fatalf("classification changed between runs: %q vs %q", got, first)
		}
		if got := SuggestedFilename(record, first); got != firstName {
			t.Fatalf("filename changed between runs: %q vs %q", got, firstName)
		}
	}
}

func TestSuggestedFilename(t *testing.T) {
	record := RawRecord{
		RecipientName: "J Smith",
		Sender:        "HMRC",
		DocumentDate:  "2025-07-08",
	}
	got := SuggestedFilename(record, ForwardAyr)
	want := "20250708_[HMRC]_[J Smith]_[AYR]"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestSuggestedFilenameMissingFields(t *testing.T) {
	got := SuggestedFilename(RawRecord{}, Undetermined)
	want := "00000000_[Unknown]_[Unknown]_[REVIEW]"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestSuggestedFilenameUnparseableDate(t *testing.T) {
	got := SuggestedFilename(RawRecord{DocumentDate: "sometime in July"}, Shred)
	want := "00000000_[Unknown]_[Unknown]_[SHRED]"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestParseImportanceDefaults(t *testing.T) {
	if got := ParseImportance("critical_forward"); got != ImportanceCriticalForward {
		t.Fatalf("case-insensitive parse failed: %q", got)
	}
	if got := ParseImportance("SHOUTING_NONSENSE"); got != ImportanceNormal {
		t.Fatalf("unknown value should default to NORMAL, got %q", got)
	}
	if got := ParseAutoAction("Archive_Digital"); got != AutoActionArchive {
		t.Fatalf("case-insensitive parse failed: %q", got)
	}
	if got := ParseAutoAction("delete everything"); got != AutoActionNone {
		t.Fatalf("unknown value should default to none, got %q", got)
	}
}

func TestClassificationCodeUnknownValue(t *testing.T) {
	if got := Classification("mystery").Code(); got != "REVIEW" {
		t.Fatalf("Code() = %q, want REVIEW", got)
	}
}
