package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "condafeed",
		Short: "Rebuild source feedstocks from conda binary packages",
		Long: `Condafeed turns a prebuilt binary package published on a conda channel
back into a buildable source feedstock: the embedded recipe plus the
original source archives it was built from.

Typical workflow:
  condafeed index            build the package database from channel repodata
  condafeed create PKG_NAME  resolve a package and rebuild its feedstock`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewIndexCmd())
	rootCmd.AddCommand(NewCreateCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}
