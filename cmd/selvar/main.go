// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// rootCmd is the base command for the selvar CLI
var rootCmd = &cobra.Command{
	Use:   "selvar",
	Short: "Selective auto-regressive lag selection",
	Long: `selvar decides, for every ordered pair of variables in a multivariate
time series, whether past values of one help predict the other and at which
lag, and attaches a Bonferroni corrected likelihood-ratio p-value to each link.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the selvar version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "selvar", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
