// README: Itinerary generation handler (text, JSON or PDF delivery).
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"itinerary/internal/http/middleware"
	"itinerary/internal/logger"
	"itinerary/internal/modules/itinerary"
	"itinerary/internal/service"
)

type ItineraryHandler struct {
	dispatcher    *service.Dispatcher
	defaultFormat service.Format
	log           *logger.Logger
}

func NewItineraryHandler(d *service.Dispatcher, defaultFormat service.Format, log *logger.Logger) *ItineraryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ItineraryHandler{dispatcher: d, defaultFormat: defaultFormat, log: log}
}

// Generate handles POST /api/generate-itinerary.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req itinerary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid request body", "error", err, "request_id", middleware.RequestIDFrom(c))
		writeError(c, http.StatusBadRequest, "Invalid request", "invalid_body", "request body must be a JSON object")
		return
	}

	n, err := itinerary.Normalize(req)
	if err != nil {
		writeFailure(c, h.log, err)
		return
	}

	format := service.SelectFormat(c.Query("format"), c.GetHeader("Accept"), h.defaultFormat)
	out, err := h.dispatcher.Deliver(c.Request.Context(), n, format, middleware.CallerClientID(c))
	if err != nil {
		writeFailure(c, h.log, err)
		return
	}

	if len(out.Warnings) > 0 {
		codes := make([]string, 0, len(out.Warnings))
		for _, w := range out.Warnings {
			codes = append(codes, w.Code)
		}
		c.Header(middleware.HeaderWarnings, strings.Join(codes, ","))
	}
	if out.QuotaRemaining != nil {
		c.Header(middleware.HeaderQuotaRemaining, strconv.Itoa(*out.QuotaRemaining))
	}

	switch out.Format {
	case service.FormatPDF:
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
		c.Data(http.StatusOK, "application/pdf", out.Document)
	case service.FormatJSON:
		writeJSON(c, http.StatusOK, out.Itinerary)
	default:
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out.Text))
	}
}

type fieldDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type describeResponse struct {
	Message  string     `json:"message"`
	Required []fieldDoc `json:"required"`
	Optional []fieldDoc `json:"optional"`
	Formats  []string   `json:"formats"`
	Default  string     `json:"defaultFormat"`
}

// Describe handles GET /api/generate-itinerary.
func (h *ItineraryHandler) Describe(c *gin.Context) {
	writeJSON(c, http.StatusOK, describeResponse{
		Message: "POST an itinerary request to generate a travel plan",
		Required: []fieldDoc{
			{"destination", "string", "city or region, e.g. \"Tokyo, Japan\""},
			{"duration", "integer", "number of days, 1 or more"},
		},
		Optional: []fieldDoc{
			{"startDate", "string", "YYYY-MM-DD"},
			{"endDate", "string", "YYYY-MM-DD, not before startDate"},
			{"budget", "object", "{min, max, currency}; currency defaults to USD"},
			{"travelStyle", "string", "budget | mid-range | luxury"},
			{"groupSize", "integer", "1 or more"},
			{"dietaryRestrictions", "string[]", "array or comma-separated string"},
			{"allergies", "string[]", "array or comma-separated string"},
			{"interests", "string[]", "array or comma-separated string"},
			{"accessibility", "string[]", "array or comma-separated string"},
			{"flightDetails", "object", "{arrival, departure, airport}"},
			{"comments", "string", "free-form notes for the planner"},
			{"rawText", "string", "previously generated text to redeliver as text or pdf without calling the model"},
		},
		Formats: []string{string(service.FormatText), string(service.FormatJSON), string(service.FormatPDF)},
		Default: string(h.defaultFormat),
	})
}
