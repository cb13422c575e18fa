// ABOUTME: Root command for the continua CLI
// ABOUTME: Handles global flags shared by subcommands

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	envFile    string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "continua",
	Short: "Periodic GPU scheduler for continuous-learning video analytics",
	Long: `continua schedules a shared GPU pool across camera-feed retraining jobs.

Each retraining period it microprofiles every job, chooses a hyperparameter
configuration, splits capacity between training and inference with the
configured policy (fair or thief), and executes the period.

Configuration comes from environment variables; see config.Load for the
full list. An optional .env file is loaded first.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file with run settings")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output period records as JSON lines")
}
