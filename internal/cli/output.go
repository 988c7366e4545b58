package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pira/internal/latency"
)

// probeOptions are the strategy flags shared by probe, batch and monitor.
type probeOptions struct {
	timeoutMS int
	useICMP   bool
	useTCP    bool
}

func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("timeout", "t", 5000, "probe timeout in milliseconds")
	cmd.Flags().Bool("icmp", true, "include the ICMP echo strategy")
	cmd.Flags().Bool("tcp", true, "include the TCP connect strategy")
}

// readProbeFlags merges flags over stored settings; explicitly set flags win.
func readProbeFlags(cmd *cobra.Command) probeOptions {
	s := appInstance.Settings
	opts := probeOptions{
		timeoutMS: int(s.Timeout.Milliseconds()),
		useICMP:   s.UseICMP,
		useTCP:    s.UseTCP,
	}
	if cmd.Flags().Changed("timeout") {
		opts.timeoutMS, _ = cmd.Flags().GetInt("timeout")
	}
	if cmd.Flags().Changed("icmp") {
		opts.useICMP, _ = cmd.Flags().GetBool("icmp")
	}
	if cmd.Flags().Changed("tcp") {
		opts.useTCP, _ = cmd.Flags().GetBool("tcp")
	}
	return opts
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResultTable(results map[string]latency.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTARGET\tLATENCY\tMETHOD\tSTATUS")
	fmt.Fprintln(w, "-\t------\t-------\t------\t------")

	for i, key := range latency.SortedKeys(results) {
		r := results[key]
		latStr := "N/A"
		statusStr := "FAIL"
		if r.Success {
			latStr = fmt.Sprintf("%d ms", r.LatencyMS)
			statusStr = "OK"
		} else if r.Error != "" {
			statusStr = "FAIL: " + r.Error
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, key, latStr, r.Method, statusStr)
	}
	w.Flush()

	summary := latency.Summarize(results)
	fmt.Printf("\nSummary: %d tested, %d succeeded, %d failed\n",
		summary.Tested, summary.Succeeded, summary.Failed)
}

func truncateName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen-3] + "..."
}

func rule(n int) string {
	return strings.Repeat("─", n)
}
