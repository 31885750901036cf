package commands

import (
	"github.com/spf13/cobra"

	"testcat/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	runtime *Runtime
	viewer  ui.Viewer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(rt *Runtime, viewer ui.Viewer) *ViewCommand {
	return &ViewCommand{
		runtime: rt,
		viewer:  viewer,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	output, err := vc.runtime.storage().Load()
	if err != nil {
		return err
	}

	return vc.viewer.View(output)
}
