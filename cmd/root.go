// Package cmd provides the coasync CLI root. Subcommand packages register
// themselves onto Root from their own init(), so the binary's command set
// is assembled by which packages main imports.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/co-async-go/co-async/lib/clog"
)

var (
	logLevel string
	logJSON  bool
)

// Root is the coasync CLI root command.
var Root = &cobra.Command{
	Use:   "coasync",
	Short: "An io_uring-backed async runtime and HTTP/CGI server",
	Long: `coasync drives a single-threaded cooperative scheduler on top of
io_uring, with a buffered stream layer, filesystem/socket wrappers, and an
HTTP/1.1 server with static-file, directory-listing, and CGI support.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return clog.SetLevel(logLevel)
	},
}

func init() {
	Root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	Root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	cobra.OnInitialize(func() {
		clog.SetJSON(logJSON)
	})
}

// Execute runs the root command, exiting non-zero with a diagnostic when
// an error escapes a subcommand (including the scheduler's join).
func Execute() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
