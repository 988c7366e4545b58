package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pira/internal/latency"
	"pira/internal/storage"
)

var batchCmd = &cobra.Command{
	Use:   "batch [host[:port]...]",
	Short: "Probe many hosts concurrently",
	Long: `Probe several hosts at once. Hosts without a port use port 80.

Use --saved to probe every enabled saved target instead of, or in addition
to, the hosts given on the command line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		saved, _ := cmd.Flags().GetBool("saved")
		asJSON, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		opts := readProbeFlags(cmd)

		hosts := make([]latency.HostPort, 0, len(args))
		for _, arg := range args {
			hp, err := latency.ParseHostPort(arg)
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", arg, err)
			}
			hosts = append(hosts, hp)
		}
		if saved {
			enabled := true
			targets, err := appInstance.Storage.GetAllTargets(ctx, storage.TargetFilter{Enabled: &enabled})
			if err != nil {
				return err
			}
			for _, t := range targets {
				hosts = append(hosts, latency.HostPort{Host: t.Host, Port: t.Port})
			}
		}
		if len(hosts) == 0 {
			return fmt.Errorf("please specify hosts or use --saved")
		}

		var progress latency.ProgressFunc
		if !asJSON && !quiet {
			fmt.Printf("Probing %d targets...\n\n", len(hosts))
			progress = func(key string, result latency.Result, current, total int) {
				if result.Success {
					fmt.Printf("  [%d/%d] %-40s %d ms\n", current, total, truncateName(key, 40), result.LatencyMS)
				} else {
					fmt.Printf("  [%d/%d] %-40s FAILED\n", current, total, truncateName(key, 40))
				}
			}
		}

		start := time.Now()
		results := appInstance.Service.ProbeHosts(ctx, hosts, opts.timeoutMS, opts.useICMP, opts.useTCP, progress)

		if asJSON {
			return printJSON(results)
		}

		fmt.Printf("\nResults (sorted by latency):\n")
		fmt.Println(rule(75))
		printResultTable(results)
		fmt.Printf("Elapsed: %.1fs\n", time.Since(start).Seconds())
		return nil
	},
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func init() {
	batchCmd.Flags().Bool("saved", false, "probe all enabled saved targets")
	batchCmd.Flags().Bool("json", false, "print results as a JSON object keyed by host:port")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress per-target progress")
	addProbeFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}
