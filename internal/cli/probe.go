package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pira/internal/latency"
)

var probeCmd = &cobra.Command{
	Use:   "probe <host>",
	Short: "Probe a single host",
	Long: `Probe a host with every enabled strategy and print the best result.

ICMP echo and TCP connect can be disabled with --icmp=false / --tcp=false.
The system ping tool is always attempted. Use --only to run a single
strategy in isolation.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTargetNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		port, _ := cmd.Flags().GetInt("port")
		only, _ := cmd.Flags().GetString("only")
		asJSON, _ := cmd.Flags().GetBool("json")
		opts := readProbeFlags(cmd)

		host := args[0]
		// A saved target name resolves to its stored host and port.
		if saved, err := appInstance.Storage.GetTargetByName(ctx, host); err == nil {
			host = saved.Host
			if !cmd.Flags().Changed("port") {
				port = saved.Port
			}
		}

		var result latency.Result
		if only != "" {
			strategy, err := latency.NewStrategy(only)
			if err != nil {
				return err
			}
			result = strategy.Probe(ctx, latency.Target{
				Host:    host,
				Port:    port,
				Timeout: msDuration(opts.timeoutMS),
			})
		} else {
			result = appInstance.Service.ProbeHost(ctx, host, port, opts.timeoutMS, opts.useICMP, opts.useTCP)
		}

		if asJSON {
			return printJSON(result)
		}
		fmt.Printf("%s:%d  %s\n", host, port, result)
		return nil
	},
}

func init() {
	probeCmd.Flags().IntP("port", "p", latency.DefaultPort, "target port for the TCP strategy")
	probeCmd.Flags().String("only", "", "run a single strategy (icmp, tcp, system)")
	probeCmd.Flags().Bool("json", false, "print the result as JSON")
	addProbeFlags(probeCmd)

	probeCmd.RegisterFlagCompletionFunc("only", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"icmp", "tcp", "system"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(probeCmd)
}
