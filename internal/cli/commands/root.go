package commands

import (
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// errReported marks a failure whose details were already written
var errReported = errors.New("scan failed")

// Process exit codes
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitTypeGraph = 2 // the snapshot itself is defective
	ExitConflict  = 3 // strict tag or route conflict
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemascan",
		Short: "Reconcile declared types into a schema model",
		Long: color.CyanString(`schemascan - schema reconciliation for declared types

schemascan reads a type graph snapshot and decides, for every exposed
property and parameter, its name, type, required/optional status,
nullability, default and deprecation, reconciling constructors,
accessors, inheritance and metadata tags.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: schemascan.yaml searched upwards)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewWrappersCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			title := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			title.Fprint(out, "schemascan version: ")
			color.New(color.FgWhite).Fprintln(out, Version)
			title.Fprint(out, "Git commit: ")
			color.New(color.FgWhite).Fprintln(out, GitCommit)
			title.Fprint(out, "Build date: ")
			color.New(color.FgWhite).Fprintln(out, BuildDate)
			title.Fprint(out, "Go version: ")
			color.New(color.FgWhite).Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		reportError(rootCmd.ErrOrStderr(), err, noColor)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case scanerrors.IsTypeGraphError(err):
		return ExitTypeGraph
	case scanerrors.IsTagConflict(err), scanerrors.IsRouteConflict(err):
		return ExitConflict
	default:
		return ExitFailure
	}
}

func noColorFlag(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return noColor
}
