package np

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/roessland/nikeplus/pkg/output"
)

// ExportConfig holds the user-facing options of an export run
type ExportConfig struct {
	UntilStr string
	SinceStr string
	SaveDir  string
}

// Export authenticates, walks the requested date range and writes every
// activity with its GPS track into cfg.SaveDir.
func Export(ctx context.Context, client *Client, cfg ExportConfig, ol *output.OutputLogger) (*ExportSummary, error) {
	auth, err := client.Factory.Authentication()
	if err != nil {
		return nil, fmt.Errorf("failed to open authentication gateway: %w", err)
	}
	api, err := client.Factory.Activity()
	if err != nil {
		return nil, fmt.Errorf("failed to open activity gateway: %w", err)
	}
	return runExport(ctx, auth, api, NewOSFileSystem(), cfg, ol)
}

func runExport(ctx context.Context, auth Authenticator, api ActivityAPI, fs FileSystem, cfg ExportConfig, ol *output.OutputLogger) (*ExportSummary, error) {
	logger := ol.Component("export")
	presenter := NewPresentationService(ol)

	since, until, err := ValidateAndParseDates(cfg.UntilStr, cfg.SinceStr)
	if err != nil {
		presenter.ShowError(err, "Invalid date range")
		return nil, err
	}

	saveDir, err := homedir.Expand(cfg.SaveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand save directory: %w", err)
	}

	if err := NewAuthService(auth, logger).EnsureAuthenticated(ctx); err != nil {
		var loginErr *LoginRequiredError
		if errors.As(err, &loginErr) {
			presenter.ShowLoginRequired(loginErr.AuthorizationURL)
		}
		return nil, err
	}

	presenter.ShowProgress("Exporting activities from %s to %s into %s",
		since.Format("2006-01-02"), until.Format("2006-01-02"), saveDir)

	iter := NewActivityIterator(ctx, api, until, since, logger)
	iter.OnWeek(presenter.ShowWeekHeader)

	var report func(ActivityInfo, ExportResult)
	if !ol.JSONMode() {
		report = presenter.ShowActivityResult
	}

	summary, err := NewExportService(api, fs, logger).ExportActivities(ctx, iter, saveDir, report)
	if err != nil {
		presenter.ShowError(err, "Export stopped")
		return summary, err
	}
	summary.Since = since
	summary.Until = until

	if ol.JSONMode() {
		presenter.ShowJSONResults(summary)
	} else {
		presenter.ShowFinalResults(summary)
	}
	return summary, nil
}
