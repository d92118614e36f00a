package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const structuredSystem = `You are an expert travel planner with deep knowledge of destinations worldwide.
Your job is to create detailed, realistic, and practical travel itineraries.

IMPORTANT GUIDELINES:
- Always consider actual travel time between locations
- Respect opening hours and operating times
- Account for meal times and rest periods
- Consider the user's budget constraints
- Respect dietary restrictions and allergies
- Make activities realistic and not overly packed
- Include specific addresses and locations
- Provide accurate time estimates
- Consider the travel style (budget/mid-range/luxury)
- Make each day balanced and enjoyable

Return ONLY valid JSON matching the exact structure specified.`

const textSystem = `You are an expert travel planner. Create clear, human-readable itineraries as plain text. ` +
	`Do NOT use JSON, code blocks, or markdown, just formatted text that is easy to read and understand. ` +
	`Separate each day into categories such as Food, Sightseeing, and any other interests the request mentions.`

var styleGuidance = map[TravelStyle]string{
	StyleBudget:   "Focus on free/low-cost activities, budget accommodations, and local food",
	StyleMidRange: "Balance value and comfort with mid-priced restaurants, popular attractions, and comfortable accommodations",
	StyleLuxury:   "Include premium experiences, high-end restaurants, and luxury accommodations",
}

// Compose renders the prompt for mode. It performs no I/O and is deterministic.
func Compose(in Input, mode Mode) Prompt {
	if mode == ModeText {
		return TextPrompt(in)
	}
	return StructuredPrompt(in)
}

// StructuredPrompt asks for a JSON object mirroring the canonical day/activity schema.
func StructuredPrompt(in Input) Prompt {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line("Create a detailed %d-day travel itinerary for %s.", in.Duration, in.Destination)
	writeDates(&b, in, "Trip Dates")

	if budget := in.Budget; budget != nil && budget.Bounded() {
		line("\nBudget: %s", formatBudget(*budget))
		if budget.Min != nil && budget.Max != nil {
			line("Please ensure the total estimated cost stays within this range.")
		} else {
			line("Please ensure the total estimated cost respects this budget.")
		}
	}
	if in.TravelStyle != "" {
		line("\nTravel Style: %s", in.TravelStyle)
		if g, ok := styleGuidance[in.TravelStyle]; ok {
			line("- %s", g)
		}
	}
	if in.GroupSize > 0 {
		line("\nGroup Size: %s", people(in.GroupSize))
	}
	if fd := in.FlightDetails; fd != nil {
		line("\nFlight Information:")
		if fd.Arrival != "" {
			line("- Arrival: %s", withAirport(fd.Arrival, "at", fd.Airport))
		}
		if fd.Departure != "" {
			line("- Departure: %s", withAirport(fd.Departure, "from", fd.Airport))
		}
		if fd.Arrival == "" && fd.Departure == "" && fd.Airport != "" {
			line("- Airport: %s", fd.Airport)
		}
		line("- Plan Day 1 activities considering arrival time and potential jet lag")
		line("- Plan the last day considering departure time")
	}
	writeList(&b, "Dietary Restrictions", in.DietaryRestrictions, "All restaurant recommendations must accommodate these restrictions")
	writeList(&b, "Food Allergies", in.Allergies, "CRITICAL: Avoid any restaurants or foods containing these allergens")
	writeList(&b, "Interests", in.Interests, "Prioritize activities and attractions that match these interests")
	writeList(&b, "Accessibility Requirements", in.Accessibility, "Ensure all recommended locations are accessible")
	if in.Comments != "" {
		line("\nAdditional Comments: %s", in.Comments)
	}

	line("\n\nOUTPUT REQUIREMENTS:")
	line("Return a JSON object with this exact structure:")
	line("%s", schemaExample(in.Destination))

	line("\nIMPORTANT:")
	line("- The \"days\" array must contain exactly %d entries, numbered 1 through %d", in.Duration, in.Duration)
	line("- Include realistic times (consider opening hours, travel time between locations)")
	line("- Provide specific addresses for all locations")
	line("- Calculate accurate costs in %s", in.Currency())
	line("- Make sure activities flow logically (don't jump across the city randomly)")
	line("- Include meal times (breakfast, lunch, dinner)")
	line("- Allow time for rest and flexibility")
	if in.FlightDetails != nil {
		line("- For Day 1, account for arrival time and potential fatigue")
		line("- For the last day, account for departure time")
	}

	return Prompt{System: structuredSystem, User: strings.TrimRight(b.String(), "\n")}
}

// TextPrompt asks for human-readable day-by-day text with no markup.
func TextPrompt(in Input) Prompt {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line("Create a detailed, realistic travel itinerary as plain text.")
	line("Destination: %s", in.Destination)
	line("Number of days: %d", in.Duration)
	writeDates(&b, in, "Travel dates")
	if budget := in.Budget; budget != nil && budget.Bounded() {
		line("Budget: %s", formatBudget(*budget))
	}
	if in.TravelStyle != "" {
		line("Travel style: %s", in.TravelStyle)
		if g, ok := styleGuidance[in.TravelStyle]; ok {
			line("Style guidance: %s", g)
		}
	}
	if in.GroupSize > 0 {
		line("Group size: %s", people(in.GroupSize))
	}
	if fd := in.FlightDetails; fd != nil {
		if fd.Arrival != "" {
			line("Flight arrival: %s", withAirport(fd.Arrival, "at", fd.Airport))
		}
		if fd.Departure != "" {
			line("Flight departure: %s", withAirport(fd.Departure, "from", fd.Airport))
		}
	}
	if len(in.DietaryRestrictions) > 0 {
		line("Dietary restrictions: %s", strings.Join(in.DietaryRestrictions, ", "))
	}
	if len(in.Allergies) > 0 {
		line("Allergies (avoid these): %s", strings.Join(in.Allergies, ", "))
	}
	if len(in.Interests) > 0 {
		line("Interests and preferences: %s", strings.Join(in.Interests, ", "))
	}
	if len(in.Accessibility) > 0 {
		line("Accessibility requirements: %s", strings.Join(in.Accessibility, ", "))
	}
	if in.Comments != "" {
		line("Additional comments and special requests: %s", in.Comments)
	}

	line("")
	line("IMPORTANT: You MUST create a detailed itinerary for ALL %d days. Do not skip any days.", in.Duration)
	line("")
	line("Formatting requirements:")
	line("- Return ONLY plain text, no JSON, no code blocks, no markdown.")
	line("- Organize the itinerary day by day (Day 1 through Day %d).", in.Duration)
	line("- You MUST cover all %d days with detailed activities.", in.Duration)
	line("- For each day, include morning, afternoon, and evening activities.")
	line("- Mention approximate times (e.g., 9:00 AM, 2:00 PM).")
	line("- Include short descriptions and why each spot is interesting.")
	line("- Include at least one food/restaurant suggestion per day that respects dietary restrictions and allergies.")
	line("- Consider realistic travel time between places and avoid jumping across the city too much.")
	if in.Budget != nil && in.Budget.Bounded() {
		line("- Stay within the budget when suggesting activities and food.")
	}
	if in.FlightDetails != nil {
		line("- Plan Day 1 around the arrival time and the last day around the departure time.")
	}

	return Prompt{System: textSystem, User: strings.TrimRight(b.String(), "\n")}
}

func writeDates(b *strings.Builder, in Input, label string) {
	switch {
	case in.StartDate != "" && in.EndDate != "":
		fmt.Fprintf(b, "\n%s: %s to %s\n", label, in.StartDate, in.EndDate)
	case in.StartDate != "":
		fmt.Fprintf(b, "\n%s: starting %s\n", label, in.StartDate)
	case in.EndDate != "":
		fmt.Fprintf(b, "\n%s: ending %s\n", label, in.EndDate)
	}
}

func writeList(b *strings.Builder, label string, items []string, rule string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s: %s\n- %s\n", label, strings.Join(items, ", "), rule)
}

func withAirport(when, prep, airport string) string {
	if airport == "" {
		return when
	}
	return when + " " + prep + " " + airport
}

func people(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

func formatBudget(b Budget) string {
	p := message.NewPrinter(language.English)
	currency := b.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	switch {
	case b.Min != nil && b.Max != nil:
		return fmt.Sprintf("%s %s - %s", currency, amount(p, *b.Min), amount(p, *b.Max))
	case b.Min != nil:
		return fmt.Sprintf("at least %s %s", currency, amount(p, *b.Min))
	case b.Max != nil:
		return fmt.Sprintf("up to %s %s", currency, amount(p, *b.Max))
	}
	return currency
}

func amount(p *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}

func schemaExample(destination string) string {
	return fmt.Sprintf(`{
  "destination": %s,
  "days": [
    {
      "date": "YYYY-MM-DD",
      "dayNumber": 1,
      "activities": [
        {
          "name": "Activity name",
          "type": "attraction|restaurant|hotel|transport|event",
          "location": {
            "name": "Location name",
            "address": "Full address",
            "coordinates": {"lat": 0, "lng": 0}
          },
          "startTime": "HH:MM",
          "endTime": "HH:MM",
          "duration": 120,
          "cost": 0,
          "description": "Detailed description",
          "notes": "Optional notes"
        }
      ],
      "totalCost": 0,
      "totalTravelTime": 0,
      "notes": "Day overview"
    }
  ],
  "estimatedCost": 0
}`, jsonString(destination))
}

func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimRight(buf.String(), "\n")
}
