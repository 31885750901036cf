package cli

import (
	"time"

	"testcat/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	TestPath     string
	ImportRoot   string
	NameFilter   string
	ShowMetadata bool
	FailFast     bool
	Format       string
	Output       string
	Sidecar      bool
	EntryPoint   string
	HarnessBases []string
	Timeout      time.Duration
	NoProgress   bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:   f.ConfigFile,
		TestPath:     f.TestPath,
		ImportRoot:   f.ImportRoot,
		Filter:       f.NameFilter,
		ShowMetadata: f.ShowMetadata,
		FailFast:     f.FailFast,
		Format:       f.Format,
		Output:       f.Output,
		Sidecar:      f.Sidecar,
		EntryPoint:   f.EntryPoint,
		HarnessBases: append([]string(nil), f.HarnessBases...),
		Timeout:      f.Timeout,
		NoProgress:   f.NoProgress,
		LogLevel:     f.LogLevel,
		LogFormat:    f.LogFormat,
	}
}
