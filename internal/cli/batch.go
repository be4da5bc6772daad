package cli

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"KeplerLens/internal/model"
	"KeplerLens/internal/report"
	"KeplerLens/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every configured job once",
	Long: `Run every job listed under jobs: in the config file once, at most
schedule.max_parallel at a time. Exits non-zero when any job fails; jobs that
find no data or end up empty after cleaning do not count as failures.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run configured jobs on the cron schedule",
	Long: `Run every configured job on schedule.cron (six fields, seconds first, or a
descriptor such as @daily) until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

// Flags
var historyLast int

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLast, "last", "n", 20, "Number of runs to show")
}

func runBatch(cmd *cobra.Command, args []string) error {
	app, err := NewAppContext(configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	jobs, err := app.BuildJobs()
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs configured.")
		return nil
	}

	s := scheduler.NewScheduler(cmd.Context(), app.Runner, jobs, app.Config.Schedule.MaxParallel)
	failed := 0
	for i, run := range s.RunAll(cmd.Context()) {
		if run == nil {
			log.Printf("[WARN] job %s not started", jobs[i].Name)
			failed++
			continue
		}
		if run.Status == model.RunFailed {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d job(s) failed", failed, len(jobs))
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := NewAppContext(configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	jobs, err := app.BuildJobs()
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return errors.New("no jobs configured, nothing to watch")
	}

	ctx := cmd.Context()
	s := scheduler.NewScheduler(ctx, app.Runner, jobs, app.Config.Schedule.MaxParallel)
	if err := s.Register(app.Config.Schedule.Cron); err != nil {
		return err
	}
	s.Start()
	defer s.Stop()

	if app.Config.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing jobs now")
		s.RunNowAsync()
	}

	log.Printf("[INFO] watching %d job(s) on %q. Press Ctrl+C to stop.", len(jobs), app.Config.Schedule.Cron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := NewAppContext(configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()

	runs, err := app.Recorder.RecentRuns(historyLast)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.FormatHistory(runs))
	return nil
}
