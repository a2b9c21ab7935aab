package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/roessland/nikeplus/nike"
	"github.com/roessland/nikeplus/np"
	"github.com/spf13/viper"
)

func main() {
	var (
		dryRun = flag.Bool("dry-run", false, "Show what would be updated without making changes")
	)
	flag.Parse()

	// Load credentials from config file or environment
	initConfig()
	clientID := viper.GetString("client_id")
	clientSecret := viper.GetString("client_secret")

	if clientID == "" || clientSecret == "" {
		home, _ := homedir.Dir()
		configPath := filepath.Join(home, ".nikeplus", "nikeplus.yaml")
		log.Fatalf(`Credentials not found. Either:

  Config file at %s:
    client_id: your_client_id
    client_secret: your_client_secret

  Or environment variables:
    export NIKEPLUS_CLIENT_ID=your_client_id
    export NIKEPLUS_CLIENT_SECRET=your_client_secret

Then run 'nikeplus login' once so a token is stored in the session file.
`, configPath)
	}

	client, err := np.Setup(np.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Callback:     viper.GetString("callback"),
		SessionPath:  viper.GetString("session_path"),
	}, nil)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	activities, err := client.Factory.Activity()
	if err != nil {
		log.Fatalf("Failed to open activity gateway: %v", err)
	}

	fixturesDir := filepath.Join("np", "testdata", "fixtures")
	if err := os.MkdirAll(fixturesDir, 0755); err != nil {
		log.Fatalf("Failed to create fixtures directory: %v", err)
	}

	ctx := context.Background()
	var selectedWeek time.Time
	var selectedDoc any

	// Reuse the week of an existing fixture if there is one
	existingFixtures, _ := filepath.Glob(filepath.Join(fixturesDir, "*.json"))
	if len(existingFixtures) > 0 {
		basename := filepath.Base(existingFixtures[0])
		if parsed, err := time.Parse("2006.01.02", basename[:10]); err == nil {
			fmt.Printf("Refreshing existing fixture for week %s...\n", parsed.Format("2006-01-02"))
			doc, err := fetchWeek(ctx, activities, parsed)
			if err != nil {
				log.Fatalf("Failed to fetch data for week %s: %v", parsed.Format("2006-01-02"), err)
			}
			selectedWeek = parsed
			selectedDoc = doc
		}
	}

	// Otherwise find a recent week with 2+ activities
	if selectedWeek.IsZero() {
		weekStart := time.Now()
		for weekStart.Weekday() != time.Monday {
			weekStart = weekStart.AddDate(0, 0, -1)
		}
		weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)

		fmt.Println("Looking for a week with 2+ activities in the last 4 weeks...")

		for i := 0; i < 4; i++ {
			currentWeek := weekStart.AddDate(0, 0, -7*i)
			fmt.Printf("Checking week %s...\n", currentWeek.Format("2006-01-02"))

			doc, err := fetchWeek(ctx, activities, currentWeek)
			if err != nil {
				log.Printf("Warning: Failed to fetch data for week %s: %v", currentWeek.Format("2006-01-02"), err)
				continue
			}

			parsed, err := np.ParseActivities(doc, currentWeek)
			if err != nil {
				log.Printf("Warning: Failed to parse week %s: %v", currentWeek.Format("2006-01-02"), err)
				continue
			}
			fmt.Printf("  Found %d activities\n", len(parsed))

			if len(parsed) >= 2 {
				selectedWeek = currentWeek
				selectedDoc = doc
				fmt.Printf("✅ Selected week %s with %d activities\n", currentWeek.Format("2006-01-02"), len(parsed))
				break
			}
		}

		if selectedWeek.IsZero() {
			log.Fatal("No week found with 2+ activities in the last 4 weeks.")
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(selectedDoc); err != nil {
		log.Fatalf("Failed to encode fixture: %v", err)
	}

	filename := fmt.Sprintf("%s-week.json", selectedWeek.Format("2006.01.02"))
	fixturePath := filepath.Join(fixturesDir, filename)

	if *dryRun {
		fmt.Printf("Would create: %s (%d bytes)\n", fixturePath, buf.Len())
		return
	}

	if err := os.WriteFile(fixturePath, buf.Bytes(), 0644); err != nil {
		log.Fatalf("Failed to write fixture %s: %v", fixturePath, err)
	}

	fmt.Printf("✅ Created fixture: %s (%d bytes)\n", fixturePath, buf.Len())

	goldenPath := filepath.Join("np", "testdata", "golden", filename)
	if _, err := os.Stat(goldenPath); err == nil {
		fmt.Printf("\nNext: run 'go test ./np'\n")
	} else {
		fmt.Printf("\nNext: run 'go test ./np -update-golden' then 'go test ./np'\n")
	}
}

func fetchWeek(ctx context.Context, activities *nike.ActivityGateway, weekStart time.Time) (any, error) {
	return activities.Activities(ctx, nike.ActivityQuery{
		StartDate: weekStart,
		EndDate:   weekStart.AddDate(0, 0, 6),
	})
}

func initConfig() {
	home, err := homedir.Dir()
	if err != nil {
		log.Printf("Warning: Could not find home directory: %v", err)
		return
	}

	configPath := filepath.Join(home, ".nikeplus", "nikeplus.yaml")
	if _, err := os.Stat(configPath); err == nil {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: Could not read config file: %v", err)
		}
	}

	viper.SetDefault("callback", "http://localhost:8080/callback")
	viper.BindEnv("client_id", "NIKEPLUS_CLIENT_ID")
	viper.BindEnv("client_secret", "NIKEPLUS_CLIENT_SECRET")
	viper.BindEnv("callback", "NIKEPLUS_CALLBACK")
	viper.BindEnv("session_path", "NIKEPLUS_SESSION_PATH")
}
