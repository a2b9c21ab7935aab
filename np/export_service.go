package np

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// ExportService writes activity documents and GPS tracks to disk
type ExportService struct {
	api    ActivityAPI
	fs     FileSystem
	logger Logger
}

// NewExportService creates a new export service
func NewExportService(api ActivityAPI, fs FileSystem, logger Logger) *ExportService {
	return &ExportService{
		api:    api,
		fs:     fs,
		logger: logger,
	}
}

// ExportActivity writes <id>.json and <id>.gps.json into saveDir. Existing
// files are kept. A missing GPS track does not fail the export.
func (es *ExportService) ExportActivity(ctx context.Context, activity ActivityInfo, saveDir string) ExportResult {
	detailPath := filepath.Join(saveDir, activity.ID+".json")
	gpsPath := filepath.Join(saveDir, activity.ID+".gps.json")

	result := ExportResult{
		ActivityID: activity.ID,
		DetailPath: detailPath,
	}

	if es.fs.Exists(detailPath) {
		result.DetailExisted = true
	} else {
		detail, err := es.api.Activity(ctx, activity.ID)
		if err != nil {
			result.Error = fmt.Errorf("failed to fetch activity %s: %w", activity.ID, err)
			return result
		}
		if err := es.writeJSON(detailPath, detail); err != nil {
			result.Error = fmt.Errorf("failed to save activity %s: %w", activity.ID, err)
			return result
		}
	}
	result.Success = true

	if es.fs.Exists(gpsPath) {
		result.GPSExisted = true
		result.GPSAvailable = true
		result.GPSPath = gpsPath
		return result
	}

	gps, err := es.api.ActivityGPS(ctx, activity.ID)
	if err != nil {
		es.logger.Warn("GPS data not available", "activity_id", activity.ID, "error", err)
		result.GPSError = err
		return result
	}
	if err := es.writeJSON(gpsPath, gps); err != nil {
		es.logger.Warn("failed to save GPS data", "activity_id", activity.ID, "error", err)
		result.GPSError = err
		return result
	}
	result.GPSAvailable = true
	result.GPSPath = gpsPath
	return result
}

func (es *ExportService) writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return es.fs.WriteFile(path, append(data, '\n'), 0644)
}

// ExportActivities exports every activity the iterator yields. report, when
// set, is called after each activity.
func (es *ExportService) ExportActivities(ctx context.Context, iter *ActivityIterator, saveDir string, report func(ActivityInfo, ExportResult)) (*ExportSummary, error) {
	if err := es.fs.MkdirAll(saveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	summary := &ExportSummary{}
	for activity, ok := iter.Next(); ok; activity, ok = iter.Next() {
		es.logger.Debug("processing activity", "activity_id", activity.ID, "type", activity.Type)

		result := es.ExportActivity(ctx, activity, saveDir)
		summary.Results = append(summary.Results, result)
		summary.Processed++
		if !result.Success {
			summary.Errors++
		}
		if report != nil {
			report(activity, result)
		}
	}
	if err := iter.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
