package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/roessland/nikeplus/nike"
	"github.com/roessland/nikeplus/np"
	"github.com/spf13/cobra"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List Nike+ activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		count, _ := cmd.Flags().GetInt("count")
		experience, _ := cmd.Flags().GetString("experience")
		raw, _ := cmd.Flags().GetBool("raw")

		query := nike.ActivityQuery{Count: count}
		var err error
		if query.StartDate, err = optionalDate(since); err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		if query.EndDate, err = optionalDate(until); err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}

		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := requireLogin(cmd.Context(), ol)
		if err != nil {
			return showFailure(ol, err, "Could not log in to Nike+")
		}
		gateway, err := client.Factory.Activity()
		if err != nil {
			return showFailure(ol, err, "Could not open activity gateway")
		}

		var value any
		if experience != "" {
			value, err = gateway.ActivitiesByExperience(cmd.Context(), experience, query)
		} else {
			value, err = gateway.Activities(cmd.Context(), query)
		}
		if err != nil {
			return showFailure(ol, err, "Could not fetch activities")
		}

		presenter := np.NewPresentationService(ol)
		if raw {
			return presenter.ShowDocument(value)
		}
		activities, err := np.ParseActivities(value, query.StartDate)
		if err != nil {
			return showFailure(ol, err, "Could not parse activities")
		}
		return presenter.ShowActivities(activities)
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity <id>",
	Short: "Show one Nike+ activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gps, _ := cmd.Flags().GetBool("gps")

		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := requireLogin(cmd.Context(), ol)
		if err != nil {
			return showFailure(ol, err, "Could not log in to Nike+")
		}
		gateway, err := client.Factory.Activity()
		if err != nil {
			return showFailure(ol, err, "Could not open activity gateway")
		}

		var value any
		if gps {
			value, err = gateway.ActivityGPS(cmd.Context(), args[0])
		} else {
			value, err = gateway.Activity(cmd.Context(), args[0])
		}
		if err != nil {
			return showFailure(ol, err, "Could not fetch activity "+args[0])
		}
		return np.NewPresentationService(ol).ShowDocument(value)
	},
}

var addActivityCmd = &cobra.Command{
	Use:   "add-activity",
	Short: "Record a new Nike+ activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		activityType, _ := cmd.Flags().GetString("type")
		deviceType, _ := cmd.Flags().GetString("device-type")
		deviceName, _ := cmd.Flags().GetString("device-name")
		start, _ := cmd.Flags().GetString("start")
		timeZone, _ := cmd.Flags().GetString("timezone")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")

		activity, err := newActivity(activityType, deviceType, deviceName, start, timeZone, metricsFile, time.Now())
		if err != nil {
			return err
		}

		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := requireLogin(cmd.Context(), ol)
		if err != nil {
			return showFailure(ol, err, "Could not log in to Nike+")
		}
		gateway, err := client.Factory.Activity()
		if err != nil {
			return showFailure(ol, err, "Could not open activity gateway")
		}

		value, err := gateway.AddActivity(cmd.Context(), activity)
		if err != nil {
			return showFailure(ol, err, "Could not add activity")
		}
		return np.NewPresentationService(ol).ShowDocument(value)
	},
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Show Nike+ lifetime totals per experience type",
	RunE: func(cmd *cobra.Command, args []string) error {
		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := requireLogin(cmd.Context(), ol)
		if err != nil {
			return showFailure(ol, err, "Could not log in to Nike+")
		}
		gateway, err := client.Factory.Aggregation()
		if err != nil {
			return showFailure(ol, err, "Could not open aggregation gateway")
		}

		value, err := gateway.Aggregation(cmd.Context())
		if err != nil {
			return showFailure(ol, err, "Could not fetch aggregates")
		}
		return np.NewPresentationService(ol).ShowDocument(value)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export activities and GPS tracks to disk",
	Long:  `Export every activity in the date range as <id>.json plus its GPS track as <id>.gps.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		saveDir, _ := cmd.Flags().GetString("save-dir")

		ol, err := newOutput()
		if err != nil {
			return err
		}
		client, err := newClient(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}

		_, err = np.Export(cmd.Context(), client, np.ExportConfig{
			UntilStr: until,
			SinceStr: since,
			SaveDir:  getConfigValue(saveDir, "save_dir"),
		}, ol)
		return err
	},
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// newActivity builds the AddActivity payload from command flags
func newActivity(activityType, deviceType, deviceName, start, timeZone, metricsFile string, now time.Time) (nike.NewActivity, error) {
	activity := nike.NewActivity{
		ActivityType: activityType,
		DeviceType:   deviceType,
		DeviceName:   deviceName,
		TimeZoneName: timeZone,
		Metrics:      []any{},
	}
	if activity.ActivityType == "" {
		return activity, fmt.Errorf("--type is required")
	}

	startTime := now
	if start != "" {
		parsed, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return activity, fmt.Errorf("invalid --start: %w", err)
		}
		startTime = parsed
	}
	activity.StartTime = startTime.UnixMilli()
	if activity.TimeZoneName == "" {
		activity.TimeZoneName = startTime.Location().String()
		if activity.TimeZoneName == "Local" {
			activity.TimeZoneName, _ = startTime.Zone()
		}
	}

	if metricsFile != "" {
		path, err := homedir.Expand(metricsFile)
		if err != nil {
			return activity, fmt.Errorf("failed to expand metrics file path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return activity, fmt.Errorf("failed to read metrics file: %w", err)
		}
		var metrics any
		if err := json.Unmarshal(data, &metrics); err != nil {
			return activity, fmt.Errorf("metrics file is not JSON: %w", err)
		}
		activity.Metrics = metrics
	}
	return activity, nil
}

func init() {
	activitiesCmd.Flags().String("since", "", "Only activities from this date (YYYY-MM-DD)")
	activitiesCmd.Flags().String("until", "", "Only activities up to this date (YYYY-MM-DD)")
	activitiesCmd.Flags().Int("count", 0, "Maximum number of activities")
	activitiesCmd.Flags().String("experience", "", "Experience type, e.g. RUNNING")
	activitiesCmd.Flags().Bool("raw", false, "Print the API document instead of a table")

	activityCmd.Flags().Bool("gps", false, "Show the GPS track instead of the activity")

	addActivityCmd.Flags().String("type", "", "Activity type, e.g. RUN")
	addActivityCmd.Flags().String("device-type", "WATCH", "Device type")
	addActivityCmd.Flags().String("device-name", "", "Device name (optional)")
	addActivityCmd.Flags().String("start", "", "Start time in RFC3339 (default: now)")
	addActivityCmd.Flags().String("timezone", "", "Time zone name (default: the start time's zone)")
	addActivityCmd.Flags().String("metrics-file", "", "JSON file with the metrics array")

	exportCmd.Flags().String("since", "4w", "Export activities since this date (e.g., '2023-12-01', '30d', '4w')")
	exportCmd.Flags().String("until", "", "Export activities until this date (optional)")
	exportCmd.Flags().String("save-dir", "", "Directory to save exported files (default: ~/.nikeplus/activities)")

	rootCmd.AddCommand(activitiesCmd, activityCmd, addActivityCmd, aggregateCmd, exportCmd)
}
