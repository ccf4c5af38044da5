package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chassis-run/chassis/internal/chassis"
)

const programName = "chassis"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chassis [options]",
		Short: "Pluggable host process bootstrap",
		Long: `chassis locates its installation directory, loads the requested plugins and
resolves the effective configuration from compiled-in defaults, a configuration
file and the command line, with the command line always winning.`,
		// argv goes through the chassis two-pass parser, not cobra's.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runChassis,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	return cmd
}

func runChassis(cmd *cobra.Command, args []string) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   programName,
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	programPath, err := os.Executable()
	if err != nil {
		programPath = os.Args[0]
	}

	frontend := chassis.NewFrontend(programName, programPath, logger)
	frontend.Out = cmd.OutOrStdout()
	frontend.Version = chassis.VersionInfo{
		Program: programName,
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	boot, err := frontend.Run(args)
	if err != nil {
		return err
	}
	if boot == nil {
		// --version or --help, already handled.
		return nil
	}
	defer frontend.Manager.Shutdown()
	defer boot.Lua.Close()

	// Bootstrap is done; the service runtime owns the process from here.
	return runRuntime(boot, logger)
}

// runRuntime is the hand-off point to the service runtime, which sits
// outside the bootstrap layer. The bootstrap context is complete and owned
// read-only from here on.
func runRuntime(boot *chassis.Bootstrap, logger hclog.Logger) error {
	for _, lp := range boot.Plugins {
		logger.Debug("plugin ready", "name", lp.Name)
	}
	return nil
}

var fatalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

func renderFatal(err error) string {
	return fatalStyle.Render("chassis: ") + err.Error()
}
