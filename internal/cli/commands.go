// Package cli implements the guacctl command line tool, a thin wrapper over
// the go-guacamole library for day-to-day gateway administration.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
)

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "guacctl [command] [flags]",
	Short: "guacctl - manage a Guacamole gateway from the command line",
	Long: `guacctl talks to the management API of an Apache Guacamole gateway.
It authenticates with the credentials from its configuration file (or
GUACCTL_* environment variables) and operates on users, connections and
active sessions.

Examples:
  # List all connections
  guacctl connections list

  # Create an SSH connection
  guacctl connections create-ssh jump1 --host jump1.internal --user admin

  # Kill an active session
  guacctl active kill 72fabc1d`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newConnectionsCmd())
	rootCmd.AddCommand(newActiveCmd())
	rootCmd.AddCommand(newDatasourcesCmd())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			printJSON(map[string]string{"error": err.Error()})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
