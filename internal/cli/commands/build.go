package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testcat/internal/ui"
)

// BuildCommand handles the build command
type BuildCommand struct {
	runtime *Runtime
}

// NewBuildCommand creates a new BuildCommand
func NewBuildCommand(rt *Runtime) *BuildCommand {
	return &BuildCommand{runtime: rt}
}

// Execute runs the command
func (bc *BuildCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := bc.runtime.Config
	logger := bc.runtime.Logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.BuildTimeout)
		defer cancel()
	}

	builder := bc.runtime.builder()
	if !cfg.Flags.NoProgress {
		builder.SetProgress(ui.NewProgressBar())
	}

	result, err := builder.Build(ctx, cfg.GetTestPath())
	if err != nil {
		return err
	}

	output := result.Output()
	st := bc.runtime.storage()
	if err := st.Save(output); err != nil {
		return fmt.Errorf("failed to save test catalog: %w", err)
	}
	logger.Info("catalog written", zap.String("path", st.Path()), zap.String("format", cfg.OutputFormat))

	formatter := bc.runtime.formatter()
	formatter.SetOutput(cmd.OutOrStdout())
	formatter.PrintCatalogStats(output)

	if !output.Complete() {
		return fmt.Errorf("%d test file(s) could not be classified", output.Meta.FailedTestFiles)
	}
	return nil
}
