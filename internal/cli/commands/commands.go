package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testcat/internal/cli"
	"testcat/internal/config"
	"testcat/internal/discovery"
	"testcat/internal/logging"
	"testcat/internal/pysource"
	"testcat/internal/storage"
	"testcat/internal/ui"
)

// Runtime is the configuration and logger shared by all commands. It is
// loaded once the flags are parsed.
type Runtime struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRuntime returns a runtime with default configuration and a no-op logger
func NewRuntime() *Runtime {
	return &Runtime{Config: config.New(), Logger: zap.NewNop()}
}

// Init loads the configuration from flags, environment and config file,
// and builds the logger.
func (r *Runtime) Init(flags *cli.Flags) error {
	cfg, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	r.Config = cfg
	r.Logger = logger
	return nil
}

// Sync flushes buffered log entries
func (r *Runtime) Sync() {
	_ = r.Logger.Sync()
}

func (r *Runtime) scanner() *discovery.Scanner {
	scanner := discovery.NewScanner(r.Config.PathsToIgnore, r.Config.FilePrefix, r.Config.FileSuffix)
	scanner.SetLogger(r.Logger)
	return scanner
}

func (r *Runtime) metadata() *discovery.MetadataExtractor {
	return discovery.NewMetadataExtractor(pysource.NewCommentExtractor(), r.Config.GetSidecarSuffix())
}

func (r *Runtime) builder() *discovery.Builder {
	resolver := discovery.NewResolver(r.Config.GetImportRoot(), r.Config.FileSuffix, r.Config.EntryPoint, r.Config.HarnessBases)
	r.Logger.Debug("resolver configured", zap.Stringer("resolver", resolver))
	return discovery.NewBuilder(
		r.scanner(),
		discovery.NewFilter(),
		r.metadata(),
		resolver,
		r.Logger,
		discovery.Options{
			FailFast:   r.Config.FailFast,
			NameFilter: r.Config.Flags.Filter,
		},
	)
}

func (r *Runtime) storage() storage.Storage {
	return storage.NewFileStorage(r.Config)
}

func (r *Runtime) formatter() *ui.Formatter {
	return ui.NewFormatter(r.Config, r.metadata())
}

// Commands holds all CLI commands
type Commands struct {
	Build *BuildCommand
	List  *ListCommand
	View  *ViewCommand

	runtime *Runtime
}

// NewCommands creates all commands sharing rt
func NewCommands(rt *Runtime) *Commands {
	return &Commands{
		Build:   NewBuildCommand(rt),
		List:    NewListCommand(rt),
		View:    NewViewCommand(rt, ui.NewCatalogViewer()),
		runtime: rt,
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default ./testcat.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := c.runtime.Init(flags); err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		c.runtime.Sync()
	}

	// Build command
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the test catalog",
		Long:  "Discover test modules, classify them as disruptive or non-disruptive and write the catalog for the execution engine",
		RunE:  c.Build.Execute,
	}
	buildCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test discovery should start")
	buildCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., 'glusterd/*snap*')")
	buildCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on the first test file that cannot be classified")
	buildCmd.Flags().StringVar(&flags.Format, "format", "", "Catalog format: json or yaml")
	buildCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Catalog file to write")
	buildCmd.Flags().BoolVar(&flags.Sidecar, "sidecar", false, "Read <test>.meta.yaml descriptors before comment annotations")
	buildCmd.Flags().StringVar(&flags.ImportRoot, "import-root", "", "Directory module identifiers are relative to (default: project path)")
	buildCmd.Flags().StringVar(&flags.EntryPoint, "entry-point", "", "Method a test class must expose")
	buildCmd.Flags().StringArrayVar(&flags.HarnessBases, "harness-base", nil, "Base class a test class must derive from (repeatable)")
	buildCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Maximum duration of the build")
	buildCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Do not show the progress bar")
	rootCmd.AddCommand(buildCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan and list candidate test modules without classifying them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*snap*' or 'dht/*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test discovery should start")
	listCmd.Flags().BoolVarP(&flags.ShowMetadata, "metadata", "m", false, "Show the nature and volume types each test declares")
	listCmd.Flags().BoolVar(&flags.Sidecar, "sidecar", false, "Read <test>.meta.yaml descriptors before comment annotations")
	rootCmd.AddCommand(listCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the last catalog interactively",
		Long:  "Display the records and unclassified files of the last built catalog in an interactive viewer",
		RunE:  c.View.Execute,
	}
	viewCmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Catalog file to read")
	rootCmd.AddCommand(viewCmd)
}
