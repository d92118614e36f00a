package itinerary_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"itinerary/internal/modules/itinerary"
)

func parse(t *testing.T, raw string) itinerary.Untrusted {
	t.Helper()
	p, err := itinerary.Repair(raw)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	return p.Object
}

func trustModel() *itinerary.Transformer {
	return itinerary.NewTransformer(itinerary.Options{CostPolicy: itinerary.CostTrustModel})
}

func TestTransform_SumsActivityCosts(t *testing.T) {
	obj := parse(t, `{"days":[{"activities":[{"cost":10},{"cost":15}]}]}`)
	it := trustModel().Transform(obj, itinerary.Input{Destination: "Paris", Duration: 1})

	if len(it.Days) != 1 {
		t.Fatalf("days = %d", len(it.Days))
	}
	if it.Days[0].TotalCost != 25 {
		t.Errorf("day total = %v, want 25", it.Days[0].TotalCost)
	}
	if it.EstimatedCost != 25 {
		t.Errorf("estimated = %v, want 25", it.EstimatedCost)
	}
}

func TestTransform_DayWithoutActivities(t *testing.T) {
	obj := parse(t, `{"days":[{"dayNumber":1,"notes":"rest"}]}`)
	it := trustModel().Transform(obj, itinerary.Input{Destination: "Paris", Duration: 1})

	day := it.Days[0]
	if day.Activities == nil || len(day.Activities) != 0 {
		t.Errorf("activities = %#v, want empty non-nil", day.Activities)
	}
	if day.TotalCost != 0 {
		t.Errorf("total = %v", day.TotalCost)
	}
	b, _ := json.Marshal(it)
	var back map[string]any
	_ = json.Unmarshal(b, &back)
	days := back["days"].([]any)
	if acts := days[0].(map[string]any)["activities"]; acts == nil {
		t.Errorf("activities must serialize as [] not null")
	}
}

func TestTransform_DefaultsEveryField(t *testing.T) {
	obj := parse(t, `{"days":[{"activities":[{}, "garbage", {"type":"spaceship","duration":0,"cost":-5,"rating":9}]}, 7]}`)
	in := itinerary.Input{Destination: "Lima", Duration: 2, StartDate: "2025-03-10", Budget: &itinerary.Budget{Min: ptr(100), Max: ptr(900), Currency: "USD"}}
	it := trustModel().Transform(obj, in)

	if it.Destination != "Lima" || it.StartDate != "2025-03-10" || it.EndDate != "2025-03-11" {
		t.Errorf("header = %q %q %q", it.Destination, it.StartDate, it.EndDate)
	}
	if it.TotalBudget != 900 {
		t.Errorf("totalBudget = %v", it.TotalBudget)
	}
	if len(it.Days) != 2 {
		t.Fatalf("days = %d", len(it.Days))
	}
	if it.Days[1].DayNumber != 2 || it.Days[1].Date != "2025-03-11" {
		t.Errorf("second day = %+v", it.Days[1])
	}

	acts := it.Days[0].Activities
	if len(acts) != 3 {
		t.Fatalf("activities = %d", len(acts))
	}
	for i, a := range acts[:2] {
		if a.Name != "Unnamed Activity" || a.Type != itinerary.ActivityAttraction {
			t.Errorf("activity %d name/type = %q/%q", i, a.Name, a.Type)
		}
		if a.Location.Name != "Unknown Location" || a.Location.Address != "Address not provided" {
			t.Errorf("activity %d location = %+v", i, a.Location)
		}
		if a.StartTime != "09:00" || a.EndTime != "10:00" || a.Duration != 60 || a.Cost != 0 {
			t.Errorf("activity %d times/cost = %+v", i, a)
		}
	}
	third := acts[2]
	if third.Type != itinerary.ActivityAttraction {
		t.Errorf("unknown type should default, got %q", third.Type)
	}
	if third.Duration != 0 {
		t.Errorf("explicit zero duration kept, got %d", third.Duration)
	}
	if third.Cost != 0 {
		t.Errorf("negative cost clamps to 0, got %v", third.Cost)
	}
	if third.Rating != nil {
		t.Errorf("out of range rating dropped, got %v", *third.Rating)
	}
	if acts[0].ID == "" || acts[0].ID == acts[1].ID || acts[0].ID == it.ID {
		t.Errorf("ids must be fresh and distinct")
	}
}

func TestTransform_IgnoresModelIDs(t *testing.T) {
	obj := parse(t, `{"id":"model-id","days":[{"activities":[{"id":"a1","name":"Louvre"}]}]}`)
	it := trustModel().Transform(obj, itinerary.Input{Destination: "Paris", Duration: 1})
	if it.ID == "model-id" || it.Days[0].Activities[0].ID == "a1" {
		t.Errorf("model-supplied ids must be replaced")
	}
}

func TestTransform_CostPolicy(t *testing.T) {
	priced := `{"estimatedCost": 999, "days":[{"totalCost": 100, "activities":[{"cost":"20"},{"cost":30}]}]}`
	zeroed := `{"estimatedCost": 0, "days":[{"totalCost": 0, "activities":[{"cost":40},{"cost":60}]}]}`
	tests := []struct {
		name      string
		raw       string
		policy    itinerary.CostPolicy
		dayTotal  float64
		estimated float64
	}{
		{"trust model totals", priced, itinerary.CostTrustModel, 100, 999},
		{"recompute ignores model totals", priced, itinerary.CostRecompute, 50, 50},
		{"zero totals fall back to sums", zeroed, itinerary.CostTrustModel, 100, 100},
		{"negative totals fall back to sums", `{"estimatedCost": -5, "days":[{"totalCost": -1, "activities":[{"cost":7}]}]}`, itinerary.CostTrustModel, 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := itinerary.NewTransformer(itinerary.Options{CostPolicy: tt.policy})
			it := tr.Transform(parse(t, tt.raw), itinerary.Input{Destination: "Paris", Duration: 1})
			if it.Days[0].TotalCost != tt.dayTotal {
				t.Errorf("day total = %v, want %v", it.Days[0].TotalCost, tt.dayTotal)
			}
			if it.EstimatedCost != tt.estimated {
				t.Errorf("estimated = %v, want %v", it.EstimatedCost, tt.estimated)
			}
		})
	}
}

func TestTransform_RoundTripCanonicalShape(t *testing.T) {
	rating := 4.5
	in := itinerary.Input{
		Destination: "Kyoto, Japan",
		Duration:    2,
		StartDate:   "2025-11-02",
		EndDate:     "2025-11-03",
		Budget:      &itinerary.Budget{Min: ptr(500), Max: ptr(1500), Currency: "JPY"},
		TravelStyle: itinerary.StyleLuxury,
		Interests:   []string{"temples"},
	}
	want := itinerary.Itinerary{
		ID:          "original",
		Destination: "Kyoto",
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TotalBudget: 1500,
		Days: []itinerary.DayPlan{
			{
				Date:      "2025-11-02",
				DayNumber: 1,
				Activities: []itinerary.Activity{
					{
						ID:          "x",
						Name:        "Fushimi Inari",
						Type:        itinerary.ActivityAttraction,
						Location:    itinerary.Location{Name: "Fushimi Inari Taisha", Address: "68 Fukakusa", Coordinates: &itinerary.Coordinates{Lat: 34.9671, Lng: 135.7727}},
						StartTime:   "08:00",
						EndTime:     "10:30",
						Duration:    150,
						Cost:        0,
						Description: "Torii gate hike",
						Rating:      &rating,
						ImageURL:    "https://example.com/inari.jpg",
						Notes:       "Go early",
					},
					{
						ID:          "y",
						Name:        "Kaiseki dinner",
						Type:        itinerary.ActivityRestaurant,
						Location:    itinerary.Location{Name: "Gion Karyo", Address: "570-235 Gionmachi"},
						StartTime:   "19:00",
						EndTime:     "21:00",
						Duration:    120,
						Cost:        180.5,
						Description: "Seasonal tasting menu",
					},
				},
				TotalCost:       180.5,
				TotalTravelTime: 45,
				Notes:           "Southern Kyoto",
			},
			{
				Date:            "2025-11-03",
				DayNumber:       2,
				Activities:      []itinerary.Activity{},
				TotalCost:       0,
				TotalTravelTime: 0,
			},
		},
		EstimatedCost:   180.5,
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UserPreferences: in,
	}

	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := trustModel().Transform(parse(t, string(b)), in)

	normalize := func(it *itinerary.Itinerary) {
		it.ID = ""
		it.CreatedAt = time.Time{}
		for d := range it.Days {
			for a := range it.Days[d].Activities {
				it.Days[d].Activities[a].ID = ""
			}
		}
	}
	normalize(&want)
	normalize(&got)
	if !reflect.DeepEqual(got, want) {
		gb, _ := json.MarshalIndent(got, "", "  ")
		wb, _ := json.MarshalIndent(want, "", "  ")
		t.Fatalf("round trip mismatch\n got: %s\nwant: %s", gb, wb)
	}
}

func TestCheckDays(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		want    int
	}{
		{"contiguous", []int{1, 2, 3}, 0},
		{"short", []int{1, 2}, 1},
		{"duplicate", []int{1, 1, 3}, 1},
		{"gap", []int{1, 3, 4}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var it itinerary.Itinerary
			for _, n := range tt.numbers {
				it.Days = append(it.Days, itinerary.DayPlan{DayNumber: n})
			}
			if got := itinerary.CheckDays(it, 3); len(got) != tt.want {
				t.Errorf("findings = %+v, want %d", got, tt.want)
			}
		})
	}
}
