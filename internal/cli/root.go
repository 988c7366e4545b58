package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pira/internal/app"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pira",
	Short: "pira - host reachability and latency prober",
	Long: `pira - host reachability and latency prober

  Probe hosts with ICMP echo, TCP connect and the system ping tool
  concurrently, and report the best answer.

  Quick start:
    pira probe example.com -p 443
    pira batch 1.1.1.1:53 8.8.8.8:53 example.com:443
    pira monitor example.com --tui
    pira target add web example.com -p 443
    pira watch`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return ensureApp(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Cleanup
		if appInstance != nil {
			return appInstance.Close()
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ensureApp lazily initializes appInstance. Cobra may invoke completion
// functions without running PersistentPreRunE.
func ensureApp(cmd *cobra.Command) error {
	if appInstance != nil {
		return nil
	}
	dbPath, _ := cmd.Flags().GetString("db")
	logLevel, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var err error
	appInstance, err = app.New(app.Config{
		DBPath:   dbPath,
		LogLevel: logLevel,
		Verbose:  verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "also log to stderr")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); defaults to the log_level setting")
	rootCmd.PersistentFlags().String("db", "", "database path")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pira %s\n", version)
	},
}
