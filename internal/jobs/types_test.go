package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReportJob_Validate(t *testing.T) {
	tests := []struct {
		name    string
		job     ReportJob
		wantErr error
	}{
		{"summary", ReportJob{Kind: ReportSummary}, nil},
		{"top seller", ReportJob{Kind: ReportTopSeller, Period: "quarter"}, nil},
		{"top seller without period", ReportJob{Kind: ReportTopSeller}, ErrInvalidJob},
		{"top seller unknown period", ReportJob{Kind: ReportTopSeller, Period: "WEEK"}, domain.ErrInvalidPeriod},
		{"low performers unknown period", ReportJob{Kind: ReportLowPerformers, Period: "FORTNIGHT"}, domain.ErrInvalidPeriod},
		{"low performers negative min", ReportJob{Kind: ReportLowPerformers, Period: "DAY", MinAmount: decimal.NewFromInt(-5)}, ErrInvalidJob},
		{"best period without seller", ReportJob{Kind: ReportBestPeriod}, ErrInvalidJob},
		{"unknown kind", ReportJob{Kind: "weekly"}, ErrInvalidJob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"storage failure", errors.New("connection reset"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"invalid period", fmt.Errorf("TopSeller: %w", domain.ErrInvalidPeriod), false},
		{"no transactions", fmt.Errorf("BestPeriod: %w", &domain.NoTransactionsError{SellerID: 1}), false},
		{"unknown seller", &domain.SellerNotFoundError{SellerID: 2}, false},
		{"too many transactions", fmt.Errorf("Find: %w", domain.ErrTooManyTransactions), false},
		{"invalid job", ErrInvalidJob, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
