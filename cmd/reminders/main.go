package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-graphql/internal/config"
	"crm-graphql/internal/logger"
	"crm-graphql/internal/metrics"
	"crm-graphql/internal/reminder"

	_ "github.com/joho/godotenv/autoload"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var (
	urlFlag         string
	logPathFlag     string
	lookbackFlag    int
	timeoutFlag     time.Duration
	scheduleFlag    string
	metricsAddrFlag string
)

var rootCmd = &cobra.Command{
	Use:          "reminders",
	Short:        "Log reminders for orders placed in the last week",
	SilenceUsage: true,
	RunE:         runReminders,
}

func init() {
	cfg = config.Load()

	rootCmd.Flags().StringVar(&urlFlag, "url", cfg.Reminder.GraphQLURL, "GraphQL endpoint of the CRM API")
	rootCmd.Flags().StringVar(&logPathFlag, "log", cfg.Reminder.LogPath, "reminder log file, appended to")
	rootCmd.Flags().IntVar(&lookbackFlag, "lookback", cfg.Reminder.LookbackDays, "days of orders to remind about")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", cfg.Reminder.HTTPTimeout, "HTTP timeout for the orders query")
	rootCmd.Flags().StringVar(&scheduleFlag, "cron", cfg.Reminder.Schedule, `run on a cron schedule, e.g. "0 8 * * *"; empty runs once`)
	rootCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "serve /metrics on this address in cron mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runReminders(cmd *cobra.Command, args []string) error {
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	client := reminder.NewGraphQLClient(urlFlag, timeoutFlag)
	job := reminder.NewJob(client, logPathFlag, lookbackFlag, log.Named("reminders"))

	if scheduleFlag == "" {
		return runOnce(cmd.Context(), job)
	}
	return runScheduled(job, log)
}

func runOnce(ctx context.Context, job *reminder.Job) error {
	result := job.Run(ctx, time.Now())
	if !result.OK {
		fmt.Println("Failed to process order reminders. Check log.")
		return result.Err
	}

	fmt.Println("Order reminders processed!")
	return nil
}

func runScheduled(job *reminder.Job, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(scheduleFlag, func() {
		result := job.Run(ctx, time.Now())
		log.Info("Scheduled reminder run finished",
			zap.Bool("ok", result.OK),
			zap.Int("lines", len(result.Lines)),
		)
	}); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	var metricsServer *http.Server
	if metricsAddrFlag != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{Addr: metricsAddrFlag, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	c.Start()
	log.Info("Reminder scheduler started", zap.String("schedule", scheduleFlag))

	<-ctx.Done()

	log.Info("Stopping reminder scheduler")
	<-c.Stop().Done()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
	}
	return nil
}
