package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/seller-analytics/internal/domain"
)

// ParsePeriod normalizes a period token. Matching is case-insensitive;
// surrounding whitespace is not stripped.
func ParsePeriod(token string) (domain.Period, error) {
	switch p := domain.Period(strings.ToUpper(token)); p {
	case domain.PeriodDay, domain.PeriodMonth, domain.PeriodQuarter, domain.PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("ParsePeriod: %q: %w", token, domain.ErrInvalidPeriod)
}

// ResolvePeriod maps a period token to the range from the start of the
// current calendar day, month, quarter or year up to now. Calendar
// boundaries are computed in now's location.
func ResolvePeriod(token string, now time.Time) (domain.ResolvedPeriod, error) {
	period, err := ParsePeriod(token)
	if err != nil {
		return domain.ResolvedPeriod{}, err
	}

	y, m, d := now.Date()
	loc := now.Location()

	var start time.Time
	switch period {
	case domain.PeriodDay:
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case domain.PeriodMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case domain.PeriodQuarter:
		quarter := (int(m) - 1) / 3
		start = time.Date(y, time.Month(quarter*3+1), 1, 0, 0, 0, 0, loc)
	case domain.PeriodYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}

	return domain.ResolvedPeriod{Period: period, Start: start, End: now}, nil
}
