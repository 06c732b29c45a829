// Package reports computes analytics reports for export jobs and writes
// them as JSON documents to object storage.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/jobs"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/shopspring/decimal"
)

// Analytics is the subset of the analytics service a report needs.
type Analytics interface {
	TopSeller(ctx context.Context, period string) (*domain.TopSeller, error)
	SellersBelowForPeriod(ctx context.Context, period string, minAmount decimal.Decimal) ([]domain.SellerAggregate, error)
	BestPeriod(ctx context.Context, sellerID int64) (*domain.BestPeriodResult, error)
	Summary(ctx context.Context) (*domain.Summary, error)
}

// Report is the exported document.
type Report struct {
	JobID       string          `json:"job_id"`
	Kind        jobs.ReportKind `json:"kind"`
	Period      string          `json:"period,omitempty"`
	MinAmount   *string         `json:"min_amount,omitempty"`
	SellerID    int64           `json:"seller_id,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        any             `json:"data"`
}

// Runner builds reports and hands them to a Writer.
type Runner struct {
	analytics Analytics
	writer    Writer
	now       func() time.Time
}

// NewRunner creates a Runner. A nil now defaults to time.Now.
func NewRunner(a Analytics, w Writer, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{analytics: a, writer: w, now: now}
}

// ObjectName returns the storage path of a job's report.
func ObjectName(job *jobs.ReportJob, at time.Time) string {
	return fmt.Sprintf("reports/%s/%s.json", at.UTC().Format("2006-01-02"), job.JobID)
}

// Build computes the report described by job.
func (r *Runner) Build(ctx context.Context, job *jobs.ReportJob) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		JobID:       job.JobID,
		Kind:        job.Kind,
		GeneratedAt: r.now().UTC(),
	}

	var err error
	switch job.Kind {
	case jobs.ReportTopSeller:
		report.Period = job.Period
		report.Data, err = r.analytics.TopSeller(ctx, job.Period)
	case jobs.ReportLowPerformers:
		report.Period = job.Period
		minAmount := job.MinAmount.String()
		report.MinAmount = &minAmount
		report.Data, err = r.analytics.SellersBelowForPeriod(ctx, job.Period, job.MinAmount)
	case jobs.ReportBestPeriod:
		report.SellerID = job.SellerID
		report.Data, err = r.analytics.BestPeriod(ctx, job.SellerID)
	case jobs.ReportSummary:
		report.Data, err = r.analytics.Summary(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("Build: %s: %w", job.Kind, err)
	}
	return report, nil
}

// Handle is a jobs.JobHandler: it builds the report, writes it and
// records the resulting URI on the job.
func (r *Runner) Handle(ctx context.Context, job *jobs.ReportJob) error {
	log := logger.FromContext(ctx)

	report, err := r.Build(ctx, job)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("Handle: marshal report: %w", err)
	}

	uri, err := r.writer.Write(ctx, ObjectName(job, report.GeneratedAt), data)
	if err != nil {
		return fmt.Errorf("Handle: write report: %w", err)
	}
	job.ObjectURI = uri

	log.Debug().
		Str("job_id", job.JobID).
		Str("object_uri", uri).
		Int("bytes", len(data)).
		Msg("Report written")
	return nil
}

var _ jobs.JobHandler = (*Runner)(nil).Handle
