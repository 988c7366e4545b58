package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pira/internal/latency"
	"pira/internal/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <host>",
	Short: "Continuously probe a host",
	Long: `Probe a host repeatedly, waiting --interval between probes, until
interrupted or --count results have been printed. Use --tui for a live
full-screen view.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTargetNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		count, _ := cmd.Flags().GetInt("count")
		useTUI, _ := cmd.Flags().GetBool("tui")

		interval := appInstance.Settings.MonitorInterval
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}

		host := args[0]
		if saved, err := appInstance.Storage.GetTargetByName(context.Background(), host); err == nil {
			host = saved.Host
			if !cmd.Flags().Changed("port") {
				port = saved.Port
			}
		}

		if useTUI {
			p := tui.NewProgram(tui.Deps{
				Service:  appInstance.Service,
				Host:     host,
				Port:     port,
				Interval: interval,
			})
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		}

		return runMonitor(host, port, interval, count)
	},
}

func runMonitor(host string, port int, interval time.Duration, count int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Monitoring %s:%d every %s (Ctrl+C to stop)\n\n", host, port, interval)

	var (
		mu       sync.Mutex
		received int
		finished = make(chan struct{})
		once     sync.Once
	)

	handle := appInstance.Service.StartMonitor(ctx, host, port, int(interval/time.Millisecond), func(r latency.Result) {
		mu.Lock()
		received++
		n := received
		mu.Unlock()

		fmt.Printf("  %s  #%-4d %s\n", r.Timestamp.Format("15:04:05"), n, r)
		if count > 0 && n >= count {
			once.Do(func() { close(finished) })
		}
	})
	defer appInstance.Service.CancelMonitor(handle)

	select {
	case <-ctx.Done():
	case <-finished:
	}
	appInstance.Service.CancelMonitor(handle)
	<-handle.Done()

	fmt.Printf("\n%d results\n", received)
	return nil
}

func init() {
	monitorCmd.Flags().IntP("port", "p", latency.DefaultPort, "target port for the TCP strategy")
	monitorCmd.Flags().DurationP("interval", "i", latency.DefaultInterval, "delay between probes")
	monitorCmd.Flags().IntP("count", "n", 0, "stop after this many results (0 = until interrupted)")
	monitorCmd.Flags().Bool("tui", false, "show a live full-screen view")

	rootCmd.AddCommand(monitorCmd)
}
