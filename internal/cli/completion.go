package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"pira/internal/app"
	"pira/internal/storage"
)

// completeTargetNames provides shell completion for a single saved target name.
func completeTargetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return targetNamesExcept(cmd, args, toComplete)
}

// completeManyTargetNames completes further target names, skipping ones
// already on the command line.
func completeManyTargetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return targetNamesExcept(cmd, args, toComplete)
}

func targetNamesExcept(cmd *cobra.Command, taken []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := ensureApp(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	ctx := context.Background()
	targets, err := appInstance.Storage.GetAllTargets(ctx, storage.TargetFilter{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, t := range targets {
		if slices.Contains(taken, t.Name) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t.Name), strings.ToLower(toComplete)) {
			completions = append(completions, t.Name)
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeSettingKeys completes the first argument of settings get/set.
func completeSettingKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, key := range app.SettingKeys() {
		if strings.HasPrefix(key, toComplete) {
			completions = append(completions, key)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
