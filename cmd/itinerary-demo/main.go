package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"itinerary/internal/ai"
	"itinerary/internal/config"
	"itinerary/internal/logger"
	"itinerary/internal/modules/document"
	"itinerary/internal/modules/itinerary"
	"itinerary/internal/service"
)

func main() {
	destination := flag.String("destination", "Tokyo, Japan", "trip destination")
	duration := flag.Int("duration", 3, "trip length in days")
	style := flag.String("style", "mid-range", "budget | mid-range | luxury")
	interests := flag.String("interests", "food,temples", "comma-separated interests")
	format := flag.String("format", "text", "text | json | pdf")
	out := flag.String("out", "", "write pdf here (default: derived filename)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Sync()

	f, ok := service.ParseFormat(*format)
	if !ok {
		log.Fatalf("unknown format %q", *format)
	}

	ctx := context.Background()
	provider, err := ai.New(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	payload, _ := json.Marshal(map[string]any{
		"destination": *destination,
		"duration":    *duration,
		"travelStyle": *style,
		"interests":   *interests,
	})
	var req itinerary.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Fatal(err)
	}
	n, err := itinerary.Normalize(req)
	if err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	gen := itinerary.NewService(provider, itinerary.Options{CostPolicy: itinerary.CostPolicy(cfg.Pipeline.CostPolicy)}, lg)
	d := service.NewDispatcher(gen, document.NewRenderer(), lg)

	fmt.Printf("Planning %d days in %s via %s (%s)\n\n", n.Input.Duration, n.Input.Destination, provider.Name(), f)
	res, err := d.Deliver(ctx, n, f, "")
	if err != nil {
		log.Fatalf("[%s] %v", itinerary.KindOf(err), err)
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning (%s): %s\n", w.Code, w.Message)
	}

	switch f {
	case service.FormatText:
		fmt.Println(res.Text)
	case service.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Itinerary); err != nil {
			log.Fatal(err)
		}
	case service.FormatPDF:
		path := strings.TrimSpace(*out)
		if path == "" {
			path = res.Filename
		}
		if err := os.WriteFile(path, res.Document, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(res.Document))
	}
}
