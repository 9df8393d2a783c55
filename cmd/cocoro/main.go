// Cocoro controls Sharp appliances through the vendor cloud.
//
// It lists the devices registered to an account, shows their properties
// and status, queues and submits control updates with optional
// verification and rollback, and can run an MQTT bridge.
//
// Usage:
//
//	cocoro [command] [flags]
//
// Credentials come from the config file written by 'cocoro login' or from
// COCORO_APP_SECRET and COCORO_APP_KEY. See 'cocoro --help'.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/version"
)

// Global flags
var (
	outputFormat string
	timeout      time.Duration
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cocoro",
	Short: "Sharp Cocoro appliance client",
	Long: `Control Sharp air conditioners and air purifiers through the Cocoro cloud.

Devices are addressed by nickname (see 'cocoro name') or numeric device ID.
Set COCORO_LOG_LEVEL=debug to see every API request.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitializeFromEnv(); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout for the command")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cocoro %s\n", version.Full())
	},
}
