// Package commands implements the CLI commands for the kiln build tool.
package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	components *app.Components
	rootCmd    *cobra.Command

	stopTracing func(context.Context) error
}

// New creates a new CLI instance backed by components.
func New(components *app.Components) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "Compile, resolve and minify JavaScript and TypeScript bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output and hook timings")

	c := &CLI{
		components: components,
		rootCmd:    rootCmd,
	}
	rootCmd.PersistentPreRun = c.configureLogging

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newTransformCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()

	if c.stopTracing != nil {
		err = errors.Join(err, c.stopTracing(context.WithoutCancel(ctx)))
		c.stopTracing = nil
	}
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and errors.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

func (c *CLI) configureLogging(cmd *cobra.Command, _ []string) {
	jsonLogs, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if out := c.components.LogOutput; out != nil {
		out.SetJSON(jsonLogs)
		if verbose {
			out.SetLevel(slog.LevelDebug)
		}
	}

	if verbose && c.stopTracing == nil {
		c.stopTracing = telemetry.Setup(telemetry.NewLogBridge(c.components.Logger))
	}
}
