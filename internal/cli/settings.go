package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pira/internal/app"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change stored defaults",
}

var settingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := appInstance.Storage.GetAllSettings(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\n", k, values[k])
		}
		return w.Flush()
	},
}

var settingsGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSettingKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := appInstance.Storage.GetSetting(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Change one setting",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSettingKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := app.ValidateSetting(key, value); err != nil {
			return err
		}
		if err := appInstance.Storage.SetSetting(context.Background(), key, value); err != nil {
			return fmt.Errorf("failed to save setting: %w", err)
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
