// README: Itinerary data model: caller input, canonical itinerary, generation modes.
package itinerary

import (
	"context"
	"time"
)

type TravelStyle string

const (
	StyleBudget   TravelStyle = "budget"
	StyleMidRange TravelStyle = "mid-range"
	StyleLuxury   TravelStyle = "luxury"
)

func (s TravelStyle) Valid() bool {
	switch s {
	case StyleBudget, StyleMidRange, StyleLuxury:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivityAttraction ActivityType = "attraction"
	ActivityRestaurant ActivityType = "restaurant"
	ActivityHotel      ActivityType = "hotel"
	ActivityTransport  ActivityType = "transport"
	ActivityEvent      ActivityType = "event"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityAttraction, ActivityRestaurant, ActivityHotel, ActivityTransport, ActivityEvent:
		return true
	}
	return false
}

// Budget bounds are optional; a nil bound was not given by the caller.
type Budget struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency"`
}

// Bounded reports whether at least one bound is set.
func (b Budget) Bounded() bool {
	return b.Min != nil || b.Max != nil
}

type FlightDetails struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
	Airport   string `json:"airport"`
}

// Input is a validated ItineraryInput. Build it with Normalize.
type Input struct {
	Destination         string         `json:"destination"`
	Duration            int            `json:"duration"`
	StartDate           string         `json:"startDate,omitempty"`
	EndDate             string         `json:"endDate,omitempty"`
	Budget              *Budget        `json:"budget,omitempty"`
	TravelStyle         TravelStyle    `json:"travelStyle,omitempty"`
	GroupSize           int            `json:"groupSize,omitempty"`
	DietaryRestrictions []string       `json:"dietaryRestrictions,omitempty"`
	Allergies           []string       `json:"allergies,omitempty"`
	Interests           []string       `json:"interests,omitempty"`
	Accessibility       []string       `json:"accessibility,omitempty"`
	FlightDetails       *FlightDetails `json:"flightDetails,omitempty"`
	Comments            string         `json:"comments,omitempty"`
}

// Currency returns the budget currency, USD when no budget was given.
func (in Input) Currency() string {
	if in.Budget != nil && in.Budget.Currency != "" {
		return in.Budget.Currency
	}
	return defaultCurrency
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Activity struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ActivityType `json:"type"`
	Location    Location     `json:"location"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Duration    int          `json:"duration"`
	Cost        float64      `json:"cost"`
	Description string       `json:"description"`
	Rating      *float64     `json:"rating,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

type DayPlan struct {
	Date            string     `json:"date"`
	DayNumber       int        `json:"dayNumber"`
	Activities      []Activity `json:"activities"`
	TotalCost       float64    `json:"totalCost"`
	TotalTravelTime int        `json:"totalTravelTime"`
	Notes           string     `json:"notes,omitempty"`
}

type Itinerary struct {
	ID              string    `json:"id"`
	Destination     string    `json:"destination"`
	StartDate       string    `json:"startDate"`
	EndDate         string    `json:"endDate"`
	Days            []DayPlan `json:"days"`
	TotalBudget     float64   `json:"totalBudget"`
	EstimatedCost   float64   `json:"estimatedCost"`
	CreatedAt       time.Time `json:"createdAt"`
	UserPreferences Input     `json:"userPreferences"`
}

// Mode selects response-format hinting and sampling parameters at the gateway.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeText       Mode = "text"
)

// Prompt is a composed request for the model: a fixed system role plus the user turn.
type Prompt struct {
	System string
	User   string
}

// Gateway is the only I/O boundary to the generation model.
// Implementations return one of the error types in errors.go and never retry.
type Gateway interface {
	Generate(ctx context.Context, prompt Prompt, mode Mode) (string, error)
}
