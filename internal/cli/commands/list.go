package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testcat/internal/discovery"
)

// ListCommand handles the list command
type ListCommand struct {
	runtime *Runtime
}

// NewListCommand creates a new ListCommand
func NewListCommand(rt *Runtime) *ListCommand {
	return &ListCommand{runtime: rt}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.runtime.Config
	testPath := cfg.GetTestPath()

	tests, err := lc.runtime.scanner().Scan(testPath)
	if err != nil {
		return err
	}

	// Filter tests
	tests = discovery.NewFilter().FilterByName(tests, cfg.Flags.Filter)
	lc.runtime.Logger.Debug("listing tests", zap.String("root", testPath), zap.Int("count", len(tests)))

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	formatter := lc.runtime.formatter()
	formatter.SetOutput(cmd.OutOrStdout())
	formatter.PrintTestList(tests, cfg.Flags.ShowMetadata)
	return nil
}
