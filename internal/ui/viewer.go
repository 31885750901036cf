package ui

import "testcat/internal/domain"

// Viewer displays a catalog document in an interactive TUI
type Viewer interface {
	View(output *domain.CatalogOutput) error
}
