package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedOrder struct {
	id        string
	email     string
	orderDate time.Time
}

// storeFetcher filters like the orders query does: order_date >= cutoff.
type storeFetcher struct {
	orders  []storedOrder
	cutoffs []time.Time
}

func (f *storeFetcher) RecentOrders(ctx context.Context, cutoff time.Time) ([]Order, error) {
	f.cutoffs = append(f.cutoffs, cutoff)

	var recent []Order
	for _, o := range f.orders {
		if !o.orderDate.Before(cutoff) {
			recent = append(recent, Order{ID: o.id, CustomerEmail: o.email})
		}
	}
	return recent, nil
}

type failingFetcher struct{ err error }

func (f failingFetcher) RecentOrders(ctx context.Context, cutoff time.Time) ([]Order, error) {
	return nil, f.err
}

type panickingFetcher struct{}

func (panickingFetcher) RecentOrders(ctx context.Context, cutoff time.Time) ([]Order, error) {
	panic("boom")
}

func logPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "order_reminders_log.txt")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestRun_RemindsOnlyOrdersInsideLookback(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	fetcher := &storeFetcher{orders: []storedOrder{
		{id: "recent", email: "ada@example.com", orderDate: now.AddDate(0, 0, -3)},
		{id: "stale", email: "bob@example.com", orderDate: now.AddDate(0, 0, -10)},
	}}
	path := logPath(t)

	result := NewJob(fetcher, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)

	require.True(t, result.OK)
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"[2024-03-15 09:30:00] Reminder: Order #recent for customer ada@example.com"}, result.Lines)
	assert.Equal(t, result.Lines, readLines(t, path))
	require.Len(t, fetcher.cutoffs, 1)
	assert.Equal(t, now.AddDate(0, 0, -7), fetcher.cutoffs[0])
}

func TestRun_CutoffIsSevenCalendarDaysAcrossDST(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks move forward on 2024-03-10, inside the window.
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, newYork)
	fetcher := &storeFetcher{orders: []storedOrder{
		{id: "same-wall-clock", email: "ada@example.com", orderDate: time.Date(2024, 3, 8, 9, 30, 0, 0, newYork)},
		{id: "half-hour-early", email: "bob@example.com", orderDate: time.Date(2024, 3, 8, 9, 0, 0, 0, newYork)},
	}}

	result := NewJob(fetcher, logPath(t), DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)

	require.True(t, result.OK)
	require.Len(t, fetcher.cutoffs, 1)
	assert.True(t, fetcher.cutoffs[0].Equal(time.Date(2024, 3, 8, 9, 30, 0, 0, newYork)))
	require.Len(t, result.Lines, 1)
	assert.Contains(t, result.Lines[0], "Order #same-wall-clock for customer ada@example.com")
}

func TestRun_AppendsAcrossRuns(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	fetcher := &storeFetcher{orders: []storedOrder{
		{id: "1", email: "ada@example.com", orderDate: now.Add(-time.Hour)},
	}}
	path := logPath(t)
	require.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0o644))

	job := NewJob(fetcher, path, DefaultLookbackDays, zap.NewNop())
	job.Run(context.Background(), now)
	job.Run(context.Background(), now.Add(time.Minute))

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "existing line", lines[0])
	assert.Equal(t, "[2024-03-15 09:31:00] Reminder: Order #1 for customer ada@example.com", lines[2])
}

func TestRun_NoOrdersWritesNothing(t *testing.T) {
	path := logPath(t)

	result := NewJob(&storeFetcher{}, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), time.Now())

	assert.True(t, result.OK)
	assert.Empty(t, result.Lines)
	assert.Empty(t, readLines(t, path))
}

func TestRun_NetworkFailureWritesOneErrorLine(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	path := logPath(t)

	result := NewJob(NewGraphQLClient(url, time.Second), path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)

	assert.False(t, result.OK)
	require.Error(t, result.Err)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[2024-03-15 09:30:00] ERROR: "))
	assert.Equal(t, lines, result.Lines)
}

func TestRun_FetchErrorMessageIsLogged(t *testing.T) {
	path := logPath(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	result := NewJob(failingFetcher{err: errors.New("connection refused")}, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)

	assert.False(t, result.OK)
	assert.Equal(t, []string{"[2024-01-02 03:04:05] ERROR: connection refused"}, readLines(t, path))
}

func TestRun_OrderWithoutEmailFailsWholeRun(t *testing.T) {
	now := time.Now()
	fetcher := &storeFetcher{orders: []storedOrder{
		{id: "1", email: "ada@example.com", orderDate: now},
		{id: "2", email: "", orderDate: now},
	}}
	path := logPath(t)

	result := NewJob(fetcher, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)

	assert.False(t, result.OK)
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERROR: order 2 has no customer email")
}

func TestRun_RecoversPanics(t *testing.T) {
	path := logPath(t)

	result := NewJob(panickingFetcher{}, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), time.Now())

	assert.False(t, result.OK)
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERROR: panic: boom")
}

func TestRun_UnwritableLogReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "log.txt")
	fetcher := &storeFetcher{orders: []storedOrder{{id: "1", email: "ada@example.com", orderDate: time.Now()}}}

	result := NewJob(fetcher, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), time.Now())

	assert.False(t, result.OK)
	assert.Error(t, result.Err)
	assert.Empty(t, result.Lines)
}

// Feature: crm, Property 15: Reminders cover exactly the lookback window
func TestProperty_RemindersCoverLookbackWindow(t *testing.T) {
	properties := gopter.NewProperties(nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	cutoff := now.AddDate(0, 0, -DefaultLookbackDays)
	prefix := "[" + now.Format("2006-01-02 15:04:05") + "] Reminder: Order #order-"

	properties.Property("one reminder per order no older than seven calendar days", prop.ForAll(
		func(ages []int) bool {
			fetcher := &storeFetcher{}
			expected := 0
			for i, hours := range ages {
				orderDate := now.Add(-time.Duration(hours) * time.Hour)
				fetcher.orders = append(fetcher.orders, storedOrder{
					id:        fmt.Sprintf("order-%d", i),
					email:     fmt.Sprintf("c%d@example.com", i),
					orderDate: orderDate,
				})
				if !orderDate.Before(cutoff) {
					expected++
				}
			}

			path := filepath.Join(t.TempDir(), "log.txt")
			result := NewJob(fetcher, path, DefaultLookbackDays, zap.NewNop()).Run(context.Background(), now)
			if !result.OK || len(result.Lines) != expected {
				return false
			}

			for _, line := range result.Lines {
				if !strings.HasPrefix(line, prefix) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 30*24)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
