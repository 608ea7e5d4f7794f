package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set by the release build process via -ldflags; it stays
// "dev" for a locally built binary.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print kotoheaders version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kotoheaders version", Version)
	},
}
