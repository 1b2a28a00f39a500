// Command tm is a dev CLI for tastemap maintenance and debugging tasks.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"

	"github.com/ibeckermayer/tastemap/internal/app"
	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/reconcile"
	"github.com/ibeckermayer/tastemap/internal/table"
	"github.com/ibeckermayer/tastemap/internal/types"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "open":
		if len(os.Args) < 3 {
			fmt.Println("Usage: tm open <config|data|cache|report>")
			os.Exit(1)
		}
		runOpen(os.Args[2])
	case "stats":
		runStats()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tm <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  open config   Open config file in default editor")
	fmt.Println("  open data     Open data directory in file explorer")
	fmt.Println("  open cache    Open cache directory in file explorer")
	fmt.Println("  open report   Open the latest run report")
	fmt.Println("  stats         Print row counts of the stored tables")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	return cfg
}

func runOpen(target string) {
	var path string
	var err error

	switch target {
	case "config":
		path, err = config.ConfigPath()
	case "data":
		path, err = loadConfig().DataPath()
	case "cache":
		path, err = config.CacheDir()
	case "report":
		cacheDir, err := config.CacheDir()
		if err != nil {
			log.Fatalf("Failed to get path: %v", err)
		}
		a := app.New(loadConfig(), nil, nil, cacheDir)
		if err := a.ViewLastReport(); err != nil {
			log.Fatalf("Failed to open: %v", err)
		}
		return
	default:
		fmt.Printf("Unknown target: %s\n", target)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Failed to get path: %v", err)
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
}

func runStats() {
	cfg := loadConfig()
	dataDir, err := cfg.DataPath()
	if err != nil {
		log.Fatalf("Failed to get data dir: %v", err)
	}
	restaurantsPath, ratingsPath, sentimentPath := app.Paths(dataDir)

	restaurants, err := table.Load(restaurantsPath, types.RestaurantSchema)
	if err != nil {
		log.Fatalf("Failed to load restaurants: %v", err)
	}
	ratings, err := table.Load(ratingsPath, types.RatingSchema)
	if err != nil {
		log.Fatalf("Failed to load ratings: %v", err)
	}
	sentiment, err := table.Load(sentimentPath, types.SentimentSchema)
	if err != nil {
		log.Fatalf("Failed to load review sentiment: %v", err)
	}

	_, invalidRatings := reconcile.CleanInvalidIDs(ratings)
	_, invalidSentiment := reconcile.CleanInvalidIDs(sentiment)

	withText := 0
	users := make(map[int]bool)
	rated := make(map[string]bool)
	for _, r := range ratings {
		if r.HasText() {
			withText++
		}
		users[r.UserID] = true
		rated[types.TransientKey(r.UserID, r.RestaurantID)] = true
	}
	orphans := 0
	for _, s := range sentiment {
		if !rated[types.TransientKey(s.UserID, s.RestaurantID)] {
			orphans++
		}
	}

	fmt.Printf("Data directory: %s\n\n", dataDir)
	fmt.Printf("%-22s %6d\n", types.RestaurantsFile, len(restaurants))
	fmt.Printf("%-22s %6d  (%d with text, %d users, %d invalid ids)\n", types.RatingsFile, len(ratings), withText, len(users), invalidRatings)
	fmt.Printf("%-22s %6d  (%d invalid ids, %d without a rating)\n", types.SentimentFile, len(sentiment), invalidSentiment, orphans)
	fmt.Printf("\nTarget: %d restaurants\n", cfg.Collection.TargetRestaurants)
}
