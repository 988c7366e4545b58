package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pira/internal/app"
	"pira/internal/latency"
	"pira/internal/storage"
	"pira/internal/storage/models"
	perrors "pira/pkg/errors"
)

var targetCmd = &cobra.Command{
	Use:     "target",
	Aliases: []string{"targets"},
	Short:   "Manage saved targets",
	Long:    "Add, list, enable, disable and remove saved targets used by batch --saved and watch",
}

var targetAddCmd = &cobra.Command{
	Use:   "add <name> <host>",
	Short: "Save a target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		port, _ := cmd.Flags().GetInt("port")
		tags, _ := cmd.Flags().GetStringSlice("tags")
		notes, _ := cmd.Flags().GetString("notes")
		opts := readProbeFlags(cmd)

		if port <= 0 || port > 65535 {
			return &perrors.TargetError{Name: args[0], Err: perrors.ErrTargetInvalid}
		}

		target := &models.Target{
			Name:      args[0],
			Host:      args[1],
			Port:      port,
			TimeoutMS: opts.timeoutMS,
			UseICMP:   opts.useICMP,
			UseTCP:    opts.useTCP,
			Enabled:   true,
			Tags:      tags,
			Notes:     notes,
		}
		if err := appInstance.Storage.CreateTarget(ctx, target); err != nil {
			return err
		}

		fmt.Printf("Target added\n\n")
		fmt.Printf("  ID:      %d\n", target.ID)
		fmt.Printf("  Name:    %s\n", target.Name)
		fmt.Printf("  Address: %s:%d\n", target.Host, target.Port)
		fmt.Printf("  Timeout: %d ms\n", target.TimeoutMS)
		if len(target.Tags) > 0 {
			fmt.Printf("  Tags:    %v\n", target.Tags)
		}
		return nil
	},
}

var targetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		enabledOnly, _ := cmd.Flags().GetBool("enabled")
		search, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		filter := storage.TargetFilter{SearchTerm: search, Tags: tags}
		if enabledOnly {
			enabled := true
			filter.Enabled = &enabled
		}

		targets, err := appInstance.Storage.GetAllTargets(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to get targets: %w", err)
		}
		if len(targets) == 0 {
			fmt.Println("No targets found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tADDRESS\tTIMEOUT\tSTRATEGIES\tENABLED")
		fmt.Fprintln(w, "--\t----\t-------\t-------\t----------\t-------")
		for _, t := range targets {
			enabled := "✗"
			if t.Enabled {
				enabled = "✓"
			}
			fmt.Fprintf(w, "%d\t%s\t%s:%d\t%d ms\t%s\t%s\n",
				t.ID, t.Name, t.Host, t.Port, t.TimeoutMS, strategyList(t), enabled)
		}
		w.Flush()

		fmt.Printf("\nTotal: %d targets\n", len(targets))
		return nil
	},
}

var targetShowCmd = &cobra.Command{
	Use:               "show <id-or-name>",
	Short:             "Show target details",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTargetNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTarget(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("  ID:         %d\n", target.ID)
		fmt.Printf("  Name:       %s\n", target.Name)
		fmt.Printf("  Address:    %s:%d\n", target.Host, target.Port)
		fmt.Printf("  Timeout:    %d ms\n", target.TimeoutMS)
		fmt.Printf("  Strategies: %s\n", strategyList(target))
		fmt.Printf("  Enabled:    %v\n", target.Enabled)
		if len(target.Tags) > 0 {
			fmt.Printf("  Tags:       %v\n", target.Tags)
		}
		if target.Notes != "" {
			fmt.Printf("  Notes:      %s\n", target.Notes)
		}
		fmt.Printf("  Created:    %s\n", target.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Updated:    %s\n", target.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var targetRemoveCmd = &cobra.Command{
	Use:               "remove <id-or-name>...",
	Aliases:           []string{"rm"},
	Short:             "Remove saved targets",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeManyTargetNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := app.RemoveTargets(context.Background(), appInstance.Storage, args)
		if err != nil {
			return err
		}
		for _, target := range removed {
			fmt.Printf("Removed target %s\n", target.Name)
		}
		return nil
	},
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:               use + " <id-or-name>...",
		Short:             short,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeManyTargetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := app.SetTargetsEnabled(context.Background(), appInstance.Storage, args, enabled)
			if err != nil {
				return err
			}
			for _, target := range changed {
				fmt.Printf("Target %s %sd\n", target.Name, use)
			}
			return nil
		},
	}
}

func resolveTarget(ctx context.Context, identifier string) (*models.Target, error) {
	return app.ResolveTarget(ctx, appInstance.Storage, identifier)
}

func strategyList(t *models.Target) string {
	s := ""
	if t.UseICMP {
		s += string(latency.MethodICMP) + ","
	}
	if t.UseTCP {
		s += string(latency.MethodTCP) + ","
	}
	return s + string(latency.MethodSystem)
}

func init() {
	targetAddCmd.Flags().IntP("port", "p", latency.DefaultPort, "target port")
	targetAddCmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	targetAddCmd.Flags().String("notes", "", "free-form notes")
	addProbeFlags(targetAddCmd)

	targetListCmd.Flags().Bool("enabled", false, "only show enabled targets")
	targetListCmd.Flags().StringP("search", "s", "", "search name, host and notes")
	targetListCmd.Flags().StringSlice("tags", nil, "only show targets with all of these tags")

	targetCmd.AddCommand(targetAddCmd)
	targetCmd.AddCommand(targetListCmd)
	targetCmd.AddCommand(targetShowCmd)
	targetCmd.AddCommand(targetRemoveCmd)
	targetCmd.AddCommand(setEnabledCmd("enable", "Enable saved targets", true))
	targetCmd.AddCommand(setEnabledCmd("disable", "Disable saved targets", false))
	rootCmd.AddCommand(targetCmd)
}
