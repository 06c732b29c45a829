package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/seller-analytics/internal/analytics"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportKind selects which analytics report a job produces.
type ReportKind string

const (
	// ReportTopSeller exports the top seller of a period.
	ReportTopSeller ReportKind = "top_seller"
	// ReportLowPerformers exports sellers below a threshold for a period.
	ReportLowPerformers ReportKind = "low_performers"
	// ReportBestPeriod exports a seller's most productive window.
	ReportBestPeriod ReportKind = "best_period"
	// ReportSummary exports store-wide summary statistics.
	ReportSummary ReportKind = "summary"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a published job does not set MaxRetries.
const DefaultMaxRetries = 3

var (
	// ErrJobNotFound is returned when a job ID is unknown to the store.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidJob is returned when a job's parameters do not fit its kind.
	ErrInvalidJob = errors.New("invalid report job")
	// ErrQueueClosed is returned when publishing to a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// ReportJob represents a request to compute an analytics report and
// export it as JSON to object storage.
type ReportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Kind is the report to compute.
	Kind ReportKind `json:"kind"`

	// Period is the period token for top_seller and low_performers.
	Period string `json:"period,omitempty"`

	// MinAmount is the threshold for low_performers.
	MinAmount decimal.Decimal `json:"min_amount"`

	// SellerID is the subject of a best_period report.
	SellerID int64 `json:"seller_id,omitempty"`

	// ObjectURI is where the finished report was written.
	ObjectURI string `json:"object_uri,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Validate checks that the job carries the parameters its kind needs.
func (j *ReportJob) Validate() error {
	switch j.Kind {
	case ReportTopSeller:
		if err := j.validatePeriod(); err != nil {
			return err
		}
	case ReportLowPerformers:
		if err := j.validatePeriod(); err != nil {
			return err
		}
		if j.MinAmount.IsNegative() {
			return fmt.Errorf("%w: min_amount must not be negative", ErrInvalidJob)
		}
	case ReportBestPeriod:
		if j.SellerID <= 0 {
			return fmt.Errorf("%w: %s requires a seller_id", ErrInvalidJob, j.Kind)
		}
	case ReportSummary:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, j.Kind)
	}
	return nil
}

func (j *ReportJob) validatePeriod() error {
	if j.Period == "" {
		return fmt.Errorf("%w: %s requires a period", ErrInvalidJob, j.Kind)
	}
	if _, err := analytics.ParsePeriod(j.Period); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	return nil
}

// Retryable reports whether a failed job may succeed on another attempt.
// Invalid input and analytics outcomes fixed by the data are final.
func Retryable(err error) bool {
	for _, final := range []error{
		ErrInvalidJob,
		domain.ErrInvalidPeriod,
		domain.ErrInvalidRange,
		domain.ErrInvalidPaymentKind,
		domain.ErrNoTransactions,
		domain.ErrInsufficientData,
		domain.ErrSellerNotFound,
		domain.ErrTooManyTransactions,
	} {
		if errors.Is(err, final) {
			return false
		}
	}
	return true
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishReport publishes a report export job.
	PublishReport(ctx context.Context, job *ReportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job *ReportJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ReportJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ReportJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReportJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Kind filters jobs by report kind.
	Kind ReportKind

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
