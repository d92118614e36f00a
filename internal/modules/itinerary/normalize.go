package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	defaultCurrency = "USD"
	defaultTitle    = "Itinerary"
)

// Number is a loosely typed JSON number: a number, a numeric string, or null.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num)
	return nil
}

func (n Number) float() (float64, bool) {
	if n == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (n Number) integer() (int, bool) {
	f, ok := n.float()
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// TagList accepts either a JSON array of strings or one comma-separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = splitTags(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	var out []string
	for _, item := range items {
		out = append(out, splitTags(item)...)
	}
	*t = out
	return nil
}

func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type BudgetRequest struct {
	Min      Number `json:"min"`
	Max      Number `json:"max"`
	Currency string `json:"currency"`
}

// Request is the raw caller payload as it arrives on the wire.
type Request struct {
	Destination         string         `json:"destination"`
	Duration            Number         `json:"duration"`
	StartDate           string         `json:"startDate"`
	EndDate             string         `json:"endDate"`
	Budget              *BudgetRequest `json:"budget"`
	TravelStyle         string         `json:"travelStyle"`
	GroupSize           Number         `json:"groupSize"`
	DietaryRestrictions TagList        `json:"dietaryRestrictions"`
	Allergies           TagList        `json:"allergies"`
	Interests           TagList        `json:"interests"`
	Accessibility       TagList        `json:"accessibility"`
	FlightDetails       *FlightDetails `json:"flightDetails"`
	Comments            string         `json:"comments"`
	RawText             string         `json:"rawText"`
}

// Warning is a soft finding that never blocks a request.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

const (
	WarnBudgetInverted   = "budget_inverted"
	WarnDateSpanMismatch = "date_span_mismatch"
	WarnDayCount         = "day_count_mismatch"
	WarnDayNumbers       = "day_number_sequence"
)

// Normalized is the result of Normalize. RawText is non-empty only on the bypass path.
type Normalized struct {
	Input    Input
	RawText  string
	Warnings []Warning
}

// Bypass reports whether the caller supplied pre-generated text.
func (n Normalized) Bypass() bool { return n.RawText != "" }

// Normalize validates and defaults a caller request. The first hard failure is
// returned as a *ValidationError naming the field.
func Normalize(req Request) (Normalized, error) {
	var out Normalized
	in := Input{
		Destination:         strings.TrimSpace(req.Destination),
		DietaryRestrictions: req.DietaryRestrictions,
		Allergies:           req.Allergies,
		Interests:           req.Interests,
		Accessibility:       req.Accessibility,
		Comments:            strings.TrimSpace(req.Comments),
	}
	if strings.TrimSpace(req.RawText) != "" {
		out.RawText = req.RawText
	}
	bypass := out.Bypass()

	if in.Destination == "" {
		if !bypass {
			return Normalized{}, &ValidationError{Field: "destination", Msg: "is required"}
		}
		in.Destination = defaultTitle
	}

	if d, ok := req.Duration.integer(); ok && d >= 1 {
		in.Duration = d
	} else if !bypass {
		return Normalized{}, &ValidationError{
			Field: "duration",
			Msg:   "missing or invalid duration, provide a number of days (1 or more)",
		}
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return Normalized{}, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return Normalized{}, err
	}
	if !start.IsZero() && !end.IsZero() {
		if end.Before(start) {
			return Normalized{}, &ValidationError{Field: "endDate", Msg: "must not be before startDate"}
		}
		span := int(end.Sub(start).Hours()/24) + 1
		if in.Duration > 0 && span != in.Duration {
			out.Warnings = append(out.Warnings, Warning{
				Code:    WarnDateSpanMismatch,
				Field:   "endDate",
				Message: fmt.Sprintf("date range covers %d days but duration is %d", span, in.Duration),
			})
		}
	}
	if !start.IsZero() {
		in.StartDate = start.Format(dateLayout)
	}
	if !end.IsZero() {
		in.EndDate = end.Format(dateLayout)
	}

	if style := strings.ToLower(strings.TrimSpace(req.TravelStyle)); style != "" {
		in.TravelStyle = TravelStyle(style)
		if !in.TravelStyle.Valid() {
			return Normalized{}, &ValidationError{Field: "travelStyle", Msg: "must be one of budget, mid-range, luxury"}
		}
	}

	if req.GroupSize != "" {
		n, ok := req.GroupSize.integer()
		if !ok || n < 1 {
			return Normalized{}, &ValidationError{Field: "groupSize", Msg: "must be a whole number of 1 or more"}
		}
		in.GroupSize = n
	}

	if req.Budget != nil && !bypass {
		b, warn, err := normalizeBudget(*req.Budget)
		if err != nil {
			return Normalized{}, err
		}
		in.Budget = b
		if warn != nil {
			out.Warnings = append(out.Warnings, *warn)
		}
	}

	if fd := req.FlightDetails; fd != nil {
		clean := FlightDetails{
			Arrival:   strings.TrimSpace(fd.Arrival),
			Departure: strings.TrimSpace(fd.Departure),
			Airport:   strings.TrimSpace(fd.Airport),
		}
		if clean != (FlightDetails{}) {
			in.FlightDetails = &clean
		}
	}

	out.Input = in
	return out, nil
}

func normalizeBudget(req BudgetRequest) (*Budget, *Warning, error) {
	minV, minOK := req.Min.float()
	maxV, maxOK := req.Max.float()
	if (req.Min != "" && !minOK) || (req.Max != "" && !maxOK) {
		return nil, nil, &ValidationError{Field: "budget", Msg: "min and max must be numbers"}
	}
	if minV < 0 || maxV < 0 {
		return nil, nil, &ValidationError{Field: "budget", Msg: "must not be negative"}
	}
	if !minOK && !maxOK {
		return nil, nil, nil
	}
	b := &Budget{Currency: strings.ToUpper(strings.TrimSpace(req.Currency))}
	if b.Currency == "" {
		b.Currency = defaultCurrency
	}
	if minOK {
		b.Min = &minV
	}
	if maxOK {
		b.Max = &maxV
	}
	if minOK && maxOK && maxV < minV {
		return b, &Warning{
			Code:    WarnBudgetInverted,
			Field:   "budget",
			Message: "budget maximum is lower than the minimum",
		}, nil
	}
	return b, nil, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Msg: "must be a date in YYYY-MM-DD form"}
	}
	return t, nil
}
