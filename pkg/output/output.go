package output

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pterm/pterm"
)

// Logger wraps slog.Logger with component-scoped children
type Logger interface {
	// Component returns a logger for a specific component
	Component(name string) Logger
	// With returns a logger with additional attributes
	With(args ...any) Logger

	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// OutputLogger handles both user output and structured logging
type OutputLogger struct {
	Logger
	jsonMode bool
	stdout   io.Writer
}

// FileState is the state of one exported file of an activity
type FileState int

const (
	StateExists FileState = iota
	StateExported
	StateError
	StateNotAvailable
)

func (s FileState) String() string {
	switch s {
	case StateExists:
		return "exists"
	case StateExported:
		return "exported"
	case StateError:
		return "error"
	case StateNotAvailable:
		return "not_available"
	default:
		return "unknown"
	}
}

// FileInfo describes one exported file, e.g. the activity JSON or its GPS track
type FileInfo struct {
	Type  string // "JSON" or "GPS"
	State FileState
}

// New creates a new OutputLogger
// If jsonMode is true, structured logs go to stdout
// If jsonMode is false, structured logs go to ~/.nikeplus/nikeplus.log and user messages use pterm
func New(jsonMode bool) (*OutputLogger, error) {
	if jsonMode {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: getLogLevel(),
		})
		return NewWithHandler(true, os.Stdout, handler), nil
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: getLogLevel(),
	})
	return NewWithHandler(false, os.Stdout, handler), nil
}

// NewWithHandler creates an OutputLogger on an existing slog handler.
// stdout receives JSON documents in JSON mode.
func NewWithHandler(jsonMode bool, stdout io.Writer, handler slog.Handler) *OutputLogger {
	return &OutputLogger{
		Logger:   &loggerImpl{slog: slog.New(handler)},
		jsonMode: jsonMode,
		stdout:   stdout,
	}
}

// JSONMode reports whether output is machine readable
func (ol *OutputLogger) JSONMode() bool {
	return ol.jsonMode
}

// getLogLevel returns the log level from LOG_LEVEL env var, defaulting to debug
func getLogLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func getLogFilePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nikeplus", "nikeplus.log"), nil
}

// WeekHeader shows a week range header
func (ol *OutputLogger) WeekHeader(startDate, endDate time.Time) {
	if ol.jsonMode {
		ol.Logger.Info("week_start", "start_date", startDate.Format("2006-01-02"), "end_date", endDate.Format("2006-01-02"))
		return
	}
	pterm.Println()
	pterm.Info.Println(fmt.Sprintf("📅 Week from %s to %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))
}

// ActivityLine shows one exported activity with the state of each of its files
func (ol *OutputLogger) ActivityLine(emoji, activityID string, files ...FileInfo) {
	if ol.jsonMode {
		args := []any{"activity_id", activityID}
		for _, f := range files {
			args = append(args, strings.ToLower(f.Type), f.State.String())
		}
		ol.Logger.Info("activity_status", args...)
		return
	}
	pterm.Println(ol.buildActivityLine(emoji, activityID, files))
}

func (ol *OutputLogger) buildActivityLine(emoji, activityID string, files []FileInfo) string {
	parts := []string{emoji, activityID}
	for _, f := range files {
		parts = append(parts, formatFileDisplay(f))
	}
	if len(files) > 0 {
		parts = append(parts, formatStatusDisplay(files[0]))
	}
	return strings.Join(parts, " ")
}

func formatFileDisplay(f FileInfo) string {
	switch f.State {
	case StateExists:
		return pterm.NewStyle(pterm.BgGray, pterm.FgBlack).Sprint(f.Type)
	case StateExported:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite).Sprint(f.Type)
	case StateError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint(f.Type)
	case StateNotAvailable:
		return pterm.NewStyle(pterm.FgGray).Sprintf("%s (not available)", f.Type)
	default:
		return f.Type
	}
}

func formatStatusDisplay(f FileInfo) string {
	switch f.State {
	case StateExists:
		return pterm.NewStyle(pterm.FgGreen).Sprint("✅ Already exported")
	case StateExported:
		return pterm.NewStyle(pterm.FgGreen).Sprint("✅ Exported")
	case StateError, StateNotAvailable:
		return pterm.NewStyle(pterm.FgRed).Sprint("❌ Error")
	default:
		return ""
	}
}

// ActivityTable renders activity rows. The first row is the header.
func (ol *OutputLogger) ActivityTable(rows [][]string) error {
	if ol.jsonMode {
		if len(rows) == 0 {
			return ol.JSON([]map[string]string{})
		}
		header := rows[0]
		records := make([]map[string]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			record := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					record[strings.ToLower(col)] = row[i]
				}
			}
			records = append(records, record)
		}
		return ol.JSON(records)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Render()
}

// LoginPrompt tells the user where to authorise the application
func (ol *OutputLogger) LoginPrompt(url string) {
	if ol.jsonMode {
		ol.Logger.Info("login_required", "authorization_url", url)
		_ = ol.JSON(map[string]string{"authorization_url": url})
		return
	}
	pterm.Warning.Println("Not logged in to Nike+. Open this URL in a browser to authorise:")
	pterm.Println(url)
}

// Progress shows ongoing operations
func (ol *OutputLogger) Progress(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("progress", "message", fmt.Sprintf(format, args...))
		return
	}
	pterm.Info.Printf(format+"\n", args...)
}

// Status shows important state changes
func (ol *OutputLogger) Status(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("status", "message", fmt.Sprintf(format, args...))
		return
	}
	pterm.Success.Printf(format+"\n", args...)
}

// Result shows final results/summaries
func (ol *OutputLogger) Result(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("result", "message", fmt.Sprintf(format, args...))
		return
	}
	pterm.Success.Printf("🎯 "+format+"\n", args...)
}

// Error shows user-facing errors
func (ol *OutputLogger) Error(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Error("user_error", "message", fmt.Sprintf(format, args...))
		return
	}
	pterm.Error.Printf(format+"\n", args...)
}

// JSON outputs structured data (only in JSON mode)
func (ol *OutputLogger) JSON(data any) error {
	if !ol.jsonMode {
		return nil
	}
	return json.NewEncoder(ol.stdout).Encode(data)
}

// PrettyJSON writes data indented, in both modes. Used for raw API documents.
func (ol *OutputLogger) PrettyJSON(data any) error {
	enc := json.NewEncoder(ol.stdout)
	if !ol.jsonMode {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

// LogAndShowError logs an error with full context and shows a user-friendly message
func (ol *OutputLogger) LogAndShowError(err error, userMsg string, args ...any) {
	ol.Logger.Error("operation_failed", "error", err.Error(), "user_message", fmt.Sprintf(userMsg, args...))
	ol.Error(userMsg, args...)
}

type loggerImpl struct {
	slog *slog.Logger
}

func (l *loggerImpl) Component(name string) Logger {
	return &loggerImpl{slog: l.slog.With("component", name)}
}

func (l *loggerImpl) With(args ...any) Logger {
	return &loggerImpl{slog: l.slog.With(args...)}
}

func (l *loggerImpl) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

func (l *loggerImpl) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

func (l *loggerImpl) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

func (l *loggerImpl) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}
