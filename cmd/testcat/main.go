package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"testcat/internal/cli"
	"testcat/internal/cli/commands"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:          "testcat",
		Short:        "GlusterFS test catalog builder",
		Long:         `Discovers test modules of a GlusterFS test suite, classifies each one as disruptive or non-disruptive with the volume types it supports, and writes the catalog the execution engine schedules from.`,
		Version:      version,
		SilenceUsage: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands sharing one runtime; configuration is loaded after flag parsing
	cmds := commands.NewCommands(commands.NewRuntime())

	// Register all commands
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
