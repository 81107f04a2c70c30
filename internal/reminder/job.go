// Package reminder appends a line per recent order to a plain-text log.
//
// A run is one query against the CRM API and one append to the log file.
// Failures become a single ERROR line and a failed Result, never a panic.
package reminder

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"crm-graphql/internal/metrics"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02 15:04:05"

// DefaultLookbackDays is how many calendar days back a run looks for orders
const DefaultLookbackDays = 7

// Result reports the outcome of one run and the lines it appended
type Result struct {
	OK    bool
	Lines []string
	Err   error
}

type Job struct {
	fetcher  OrderFetcher
	logPath  string
	lookbackDays int
	logger   *zap.Logger
}

func NewJob(fetcher OrderFetcher, logPath string, lookbackDays int, logger *zap.Logger) *Job {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Job{
		fetcher:  fetcher,
		logPath:  logPath,
		lookbackDays: lookbackDays,
		logger:   logger,
	}
}

// Run writes a reminder line for every order placed since now minus the
// lookback in calendar days, so a DST change inside the window does not shift
// the cutoff's wall-clock time. Every line carries now as its timestamp.
func (j *Job) Run(ctx context.Context, now time.Time) (result Result) {
	timestamp := now.Local().Format(timestampLayout)

	defer func() {
		if r := recover(); r != nil {
			result = j.fail(timestamp, fmt.Errorf("panic: %v", r))
		}
		metrics.RecordReminderRun(result.OK, reminderCount(result))
	}()

	cutoff := now.AddDate(0, 0, -j.lookbackDays)

	orders, err := j.fetcher.RecentOrders(ctx, cutoff)
	if err != nil {
		return j.fail(timestamp, err)
	}

	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		if order.CustomerEmail == "" {
			return j.fail(timestamp, fmt.Errorf("order %s has no customer email", order.ID))
		}
		lines = append(lines, fmt.Sprintf("[%s] Reminder: Order #%s for customer %s", timestamp, order.ID, order.CustomerEmail))
	}

	if err := appendLines(j.logPath, lines); err != nil {
		return j.fail(timestamp, err)
	}

	j.logger.Info("Order reminders processed",
		zap.Int("orders", len(orders)),
		zap.Time("cutoff", cutoff),
		zap.String("log_path", j.logPath),
	)

	return Result{OK: true, Lines: lines}
}

func (j *Job) fail(timestamp string, err error) Result {
	line := fmt.Sprintf("[%s] ERROR: %s", timestamp, err.Error())

	j.logger.Error("Order reminders failed", zap.Error(err), zap.String("log_path", j.logPath))

	if writeErr := appendLines(j.logPath, []string{line}); writeErr != nil {
		j.logger.Error("Failed to write error line", zap.Error(writeErr))
		return Result{Err: err}
	}

	return Result{Lines: []string{line}, Err: err}
}

// appendLines opens path in append mode for the duration of one write
func appendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	return nil
}

func reminderCount(result Result) int {
	if !result.OK {
		return 0
	}
	return len(result.Lines)
}
