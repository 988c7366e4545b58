package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pira/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Probe all saved targets on a schedule",
	Long: `Probe every enabled saved target immediately and then every
--interval, printing a result table after each run. Results are not stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := appInstance.Settings.WatchInterval
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler, err := watch.NewScheduler(
			appInstance.Storage,
			appInstance.Service.Tester(),
			interval,
			printReport,
			appInstance.Logger.Named("watch"),
		)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("Watching saved targets every %s (Ctrl+C to stop)\n", interval)

		<-ctx.Done()
		return scheduler.Stop()
	},
}

func printReport(report *watch.Report) {
	fmt.Printf("\n%s  (%d targets, %.1fs)\n", report.RunAt.Format("2006-01-02 15:04:05"),
		len(report.Targets), report.Duration.Seconds())
	fmt.Println(rule(75))
	if len(report.Results) == 0 {
		fmt.Println("No enabled targets. Add some with 'pira target add'.")
		return
	}
	printResultTable(report.Results)
}

func init() {
	watchCmd.Flags().DurationP("interval", "i", 0, "time between runs (defaults to the watch_interval_s setting)")
	rootCmd.AddCommand(watchCmd)
}
