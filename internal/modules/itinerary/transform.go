package itinerary

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CostPolicy decides whether model-reported totals are trusted or recomputed.
// Under CostTrustModel a reported total is used only when it is positive.
type CostPolicy string

const (
	CostTrustModel CostPolicy = "trust_model"
	CostRecompute  CostPolicy = "recompute"
)

// Placeholders written when the model omits a location.
const (
	PlaceholderLocation = "Unknown Location"
	PlaceholderAddress  = "Address not provided"
)

const (
	defaultActivityName = "Unnamed Activity"
	defaultStartTime    = "09:00"
	defaultEndTime      = "10:00"
	defaultDuration     = 60
)

type Options struct {
	CostPolicy CostPolicy
	StrictDays bool
}

// Transformer coerces an untrusted object into the canonical Itinerary. It never fails.
type Transformer struct {
	opts  Options
	now   func() time.Time
	newID func() string
}

func NewTransformer(opts Options) *Transformer {
	if opts.CostPolicy == "" {
		opts.CostPolicy = CostTrustModel
	}
	return &Transformer{
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (t *Transformer) Transform(obj Untrusted, in Input) Itinerary {
	start, _ := time.Parse(dateLayout, in.StartDate)

	rawDays := obj.Objects("days")
	days := make([]DayPlan, 0, len(rawDays))
	var sum float64
	for i, raw := range rawDays {
		day := t.day(raw, i, start)
		sum += day.TotalCost
		days = append(days, day)
	}

	it := Itinerary{
		ID:              t.newID(),
		Destination:     in.Destination,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Days:            days,
		EstimatedCost:   sum,
		CreatedAt:       t.now(),
		UserPreferences: in,
	}
	if d, ok := obj.String("destination"); ok {
		it.Destination = d
	}
	if it.EndDate == "" && !start.IsZero() && in.Duration > 0 {
		it.EndDate = start.AddDate(0, 0, in.Duration-1).Format(dateLayout)
	}
	if in.Budget != nil && in.Budget.Max != nil {
		it.TotalBudget = *in.Budget.Max
	}
	if t.opts.CostPolicy == CostTrustModel {
		if v, ok := obj.Number("estimatedCost"); ok && v > 0 {
			it.EstimatedCost = v
		}
	}
	return it
}

func (t *Transformer) day(raw Untrusted, index int, start time.Time) DayPlan {
	rawActs := raw.Objects("activities")
	acts := make([]Activity, 0, len(rawActs))
	var sum float64
	for _, ra := range rawActs {
		a := t.activity(ra)
		sum += a.Cost
		acts = append(acts, a)
	}

	day := DayPlan{
		DayNumber:  index + 1,
		Activities: acts,
		TotalCost:  sum,
	}
	if d, ok := raw.String("date"); ok {
		day.Date = d
	} else if !start.IsZero() {
		day.Date = start.AddDate(0, 0, index).Format(dateLayout)
	}
	if n, ok := raw.Int("dayNumber"); ok && n >= 1 {
		day.DayNumber = n
	}
	if t.opts.CostPolicy == CostTrustModel {
		// 0 is the schema example's placeholder, treated as absent.
		if v, ok := raw.Number("totalCost"); ok && v > 0 {
			day.TotalCost = v
		}
	}
	if v, ok := raw.Number("totalTravelTime"); ok {
		day.TotalTravelTime = int(nonNegative(v))
	}
	day.Notes, _ = raw.String("notes")
	return day
}

func (t *Transformer) activity(raw Untrusted) Activity {
	a := Activity{
		ID:        t.newID(),
		Name:      defaultActivityName,
		Type:      ActivityAttraction,
		StartTime: defaultStartTime,
		EndTime:   defaultEndTime,
		Duration:  defaultDuration,
		Location: Location{
			Name:    PlaceholderLocation,
			Address: PlaceholderAddress,
		},
	}
	if s, ok := raw.String("name"); ok {
		a.Name = s
	}
	if s, ok := raw.String("type"); ok && ActivityType(s).Valid() {
		a.Type = ActivityType(s)
	}
	if loc, ok := raw.Object("location"); ok {
		if s, ok := loc.String("name"); ok {
			a.Location.Name = s
		}
		if s, ok := loc.String("address"); ok {
			a.Location.Address = s
		}
		if c, ok := loc.Object("coordinates"); ok {
			lat, latOK := c.Number("lat")
			lng, lngOK := c.Number("lng")
			if latOK && lngOK {
				a.Location.Coordinates = &Coordinates{Lat: lat, Lng: lng}
			}
		}
	}
	if s, ok := raw.String("startTime"); ok {
		a.StartTime = s
	}
	if s, ok := raw.String("endTime"); ok {
		a.EndTime = s
	}
	if v, ok := raw.Number("duration"); ok {
		a.Duration = int(nonNegative(v))
	}
	if v, ok := raw.Number("cost"); ok {
		a.Cost = nonNegative(v)
	}
	a.Description, _ = raw.String("description")
	if v, ok := raw.Number("rating"); ok && v >= 1 && v <= 5 {
		a.Rating = &v
	}
	a.ImageURL, _ = raw.String("imageUrl")
	a.Notes, _ = raw.String("notes")
	return a
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// CheckDays reports day numbers that are duplicated or not 1..n in order, and a
// day count that differs from the requested duration. Nothing is rewritten.
func CheckDays(it Itinerary, duration int) []Warning {
	var out []Warning
	if duration > 0 && len(it.Days) != duration {
		out = append(out, Warning{
			Code:    WarnDayCount,
			Field:   "days",
			Message: fmt.Sprintf("model returned %d days for a %d-day trip", len(it.Days), duration),
		})
	}
	seen := make(map[int]bool, len(it.Days))
	for i, d := range it.Days {
		if seen[d.DayNumber] {
			out = append(out, Warning{
				Code:    WarnDayNumbers,
				Field:   "days",
				Message: fmt.Sprintf("day number %d appears more than once", d.DayNumber),
			})
			continue
		}
		seen[d.DayNumber] = true
		if d.DayNumber != i+1 {
			out = append(out, Warning{
				Code:    WarnDayNumbers,
				Field:   "days",
				Message: fmt.Sprintf("day at position %d is numbered %d", i+1, d.DayNumber),
			})
		}
	}
	return out
}
