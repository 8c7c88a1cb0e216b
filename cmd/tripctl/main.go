// tripctl starts an itinerary generation job against a running server and
// polls it to completion, printing the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/client"
	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/usecase"
)

func main() {
	var (
		server       = flag.String("server", "http://localhost:8080", "base URL of the itinerary API")
		destination  = flag.String("destination", "", "trip destination (required)")
		dates        = flag.String("dates", "", "travel dates, free text (required)")
		people       = flag.String("people", "2", "number of travellers")
		restrictions = flag.String("restrictions", "", "dietary or other restrictions")
		budget       = flag.String("budget", "", "trip budget, free text")
		transport    = flag.String("transport", "public transport", "preferred transportation mode")
		interests    = flag.String("interests", "", "traveller interests")
		pollInterval = flag.Duration("poll-interval", 20*time.Second, "status poll interval")
		maxPolls     = flag.Int("max-polls", 15, "maximum status polls before giving up")
		verbose      = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *destination == "" || *dates == "" {
		fmt.Fprintln(os.Stderr, "both -destination and -dates are required")
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	form := model.FormInputs{
		Destination:        *destination,
		Dates:              *dates,
		People:             *people,
		Restrictions:       *restrictions,
		Budget:             *budget,
		TransportationMode: *transport,
		Interests:          *interests,
	}
	prompt := usecase.BuildTripPrompt(form)

	p := client.New(client.Options{
		BaseURL:      *server,
		PollInterval: *pollInterval,
		MaxPolls:     *maxPolls,
		Log:          &logger,
		OnProgress: func(pct int) {
			fmt.Fprintf(os.Stderr, "\rgenerating... %3d%%", pct)
		},
	})

	out := p.Run(context.Background(), prompt, &form)
	fmt.Fprintln(os.Stderr)

	switch out.State {
	case client.StateCompleted:
		printResult(out.Result)
	case client.StateTimedOut:
		fmt.Fprintln(os.Stderr, out.Message)
		if out.JobID != "" {
			fmt.Fprintf(os.Stderr, "job id: %s\n", out.JobID)
		}
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", out.Err)
		os.Exit(1)
	}
}

// printResult renders the structured itinerary when the payload decodes into
// one, and falls back to raw text (or raw JSON) otherwise.
func printResult(result map[string]any) {
	if text, ok := result[usecase.TextResponseKey].(string); ok {
		fmt.Println(text)
		return
	}

	raw, err := json.Marshal(result)
	if err == nil {
		var resp model.ItineraryResponse
		if err := json.Unmarshal(raw, &resp); err == nil && len(resp.Itineraries) > 0 {
			for i, it := range resp.Itineraries {
				fmt.Printf("== Option %d: %s (%s)\n", i+1, it.Title, it.Focus)
				fmt.Println(it.Summary)
				for _, day := range it.DailySchedule {
					fmt.Printf("\nDay %d - %s\n", day.Day, day.Date)
					printSlot("morning", day.Morning)
					printSlot("afternoon", day.Afternoon)
					printSlot("evening", day.Evening)
					for _, meal := range day.Meals {
						fmt.Printf("  %s: %s ($%.0f)\n", meal.Type, meal.Suggestion, meal.Cost)
					}
				}
				fmt.Printf("\nEstimated total: $%.0f (%s)\n\n", it.CostBreakdown.TotalEstimatedCost, it.CostBreakdown.ComparisonToBudget)
			}
			return
		}
	}

	// Unknown shape; dump it as indented JSON rather than hiding it.
	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func printSlot(name string, a *model.Activity) {
	if a == nil {
		return
	}
	fmt.Printf("  %s: %s @ %s (%s, $%.0f)\n", name, a.Activity, a.Location, a.Duration, a.Cost)
}
