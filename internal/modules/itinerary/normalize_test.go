// README: Tests for request decoding and input normalization.
package itinerary_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"itinerary/internal/modules/itinerary"
)

func decodeRequest(t *testing.T, body string) itinerary.Request {
	t.Helper()
	var req itinerary.Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}

func TestNormalize_SplitsCommaSeparatedLists(t *testing.T) {
	req := decodeRequest(t, `{
		"destination": "  Tokyo, Japan ",
		"duration": 3,
		"dietaryRestrictions": "vegetarian, , halal ",
		"interests": ["food, museums", "  hiking "],
		"allergies": "",
		"comments": "   "
	}`)
	n, err := itinerary.Normalize(req)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	in := n.Input
	if in.Destination != "Tokyo, Japan" {
		t.Errorf("destination = %q", in.Destination)
	}
	if !reflect.DeepEqual(in.DietaryRestrictions, []string{"vegetarian", "halal"}) {
		t.Errorf("dietary = %#v", in.DietaryRestrictions)
	}
	if !reflect.DeepEqual(in.Interests, []string{"food", "museums", "hiking"}) {
		t.Errorf("interests = %#v", in.Interests)
	}
	if in.Allergies != nil {
		t.Errorf("empty allergies should be absent, got %#v", in.Allergies)
	}
	if in.Comments != "" {
		t.Errorf("blank comments should be absent, got %q", in.Comments)
	}
	if n.Bypass() {
		t.Errorf("unexpected bypass")
	}
}

func TestNormalize_DurationRules(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    int
	}{
		{"number", `{"destination":"Rome","duration":4}`, false, 4},
		{"numeric string", `{"destination":"Rome","duration":"5"}`, false, 5},
		{"missing", `{"destination":"Rome"}`, true, 0},
		{"zero", `{"destination":"Rome","duration":0}`, true, 0},
		{"fractional", `{"destination":"Rome","duration":2.5}`, true, 0},
		{"garbage", `{"destination":"Rome","duration":"many"}`, true, 0},
		{"raw text bypass", `{"destination":"Rome","rawText":"Day 1: walk"}`, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := itinerary.Normalize(decodeRequest(t, tt.body))
			if tt.wantErr {
				var verr *itinerary.ValidationError
				if !errors.As(err, &verr) || verr.Field != "duration" {
					t.Fatalf("expected duration ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if n.Input.Duration != tt.want {
				t.Errorf("duration = %d, want %d", n.Input.Duration, tt.want)
			}
		})
	}
}

func TestNormalize_InvertedBudgetIsWarning(t *testing.T) {
	n, err := itinerary.Normalize(decodeRequest(t, `{
		"destination": "Lisbon",
		"duration": 2,
		"budget": {"min": 2000, "max": 500, "currency": "eur"}
	}`))
	if err != nil {
		t.Fatalf("inverted budget must not be rejected: %v", err)
	}
	if len(n.Warnings) != 1 || n.Warnings[0].Code != itinerary.WarnBudgetInverted {
		t.Fatalf("warnings = %+v", n.Warnings)
	}
	if n.Input.Budget == nil || n.Input.Budget.Currency != "EUR" {
		t.Errorf("budget = %+v", n.Input.Budget)
	}
}

func TestNormalize_RejectsBadFields(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"duration":2}`, "destination"},
		{`{"destination":"Oslo","duration":2,"travelStyle":"backpacker"}`, "travelStyle"},
		{`{"destination":"Oslo","duration":2,"groupSize":0}`, "groupSize"},
		{`{"destination":"Oslo","duration":2,"startDate":"12/01/2025"}`, "startDate"},
		{`{"destination":"Oslo","duration":2,"startDate":"2025-06-10","endDate":"2025-06-01"}`, "endDate"},
		{`{"destination":"Oslo","duration":2,"budget":{"min":-1,"max":10}}`, "budget"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := itinerary.Normalize(decodeRequest(t, tt.body))
			var verr *itinerary.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
			if itinerary.KindOf(err) != itinerary.KindValidation {
				t.Errorf("kind = %q", itinerary.KindOf(err))
			}
		})
	}
}

func TestNormalize_DateSpanMismatchWarns(t *testing.T) {
	n, err := itinerary.Normalize(decodeRequest(t, `{
		"destination": "Kyoto",
		"duration": 3,
		"startDate": "2025-04-01",
		"endDate": "2025-04-05"
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(n.Warnings) != 1 || n.Warnings[0].Code != itinerary.WarnDateSpanMismatch {
		t.Fatalf("warnings = %+v", n.Warnings)
	}
}

func TestNormalize_BypassDefaultsTitleAndSkipsBudget(t *testing.T) {
	n, err := itinerary.Normalize(decodeRequest(t, `{
		"rawText": "Day 1: arrive",
		"budget": {"min": "lots", "max": 1}
	}`))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !n.Bypass() || n.RawText != "Day 1: arrive" {
		t.Errorf("raw text = %q", n.RawText)
	}
	if n.Input.Destination != "Itinerary" {
		t.Errorf("destination = %q", n.Input.Destination)
	}
	if n.Input.Budget != nil {
		t.Errorf("budget should be ignored on bypass")
	}
}
