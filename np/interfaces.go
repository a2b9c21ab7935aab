package np

import (
	"context"
	"time"

	"github.com/roessland/nikeplus/nike"
)

// ActivityAPI abstracts the Nike+ activity gateway for testing
type ActivityAPI interface {
	Activities(ctx context.Context, query nike.ActivityQuery) (any, error)
	Activity(ctx context.Context, activityID string) (any, error)
	ActivityGPS(ctx context.Context, activityID string) (any, error)
}

// Authenticator abstracts the Nike+ authentication gateway for testing
type Authenticator interface {
	IsAuthorized(ctx context.Context) (bool, error)
	InitiateLogin(ctx context.Context) (*nike.RedirectSignal, error)
	AuthenticateUser(ctx context.Context, code, state string) (*nike.Token, error)
	ResetSession(ctx context.Context) error
}

// FileSystem interface abstracts file operations for testing
type FileSystem interface {
	WriteFile(path string, data []byte, perm int) error
	Exists(path string) bool
	MkdirAll(path string, perm int) error
}

// Logger interface abstracts logging for testing
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ExportResult represents the result of exporting a single activity
type ExportResult struct {
	ActivityID    string
	Success       bool
	DetailPath    string
	DetailExisted bool
	GPSPath       string // empty when no GPS track was written
	GPSExisted    bool
	GPSAvailable  bool
	GPSError      error
	Error         error
}

// Existed reports whether nothing had to be fetched
func (r ExportResult) Existed() bool {
	return r.DetailExisted && r.GPSExisted
}

// ExportSummary represents the overall export results
type ExportSummary struct {
	Processed int
	Errors    int
	Since     time.Time
	Until     time.Time
	Results   []ExportResult
}
