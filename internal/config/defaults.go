package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test root, relative to the project path
	DefaultTestPath = "tests"
	// DefaultFilePrefix is the file name prefix of candidate test files
	DefaultFilePrefix = "test"
	// DefaultFileSuffix is the source suffix of candidate test files
	DefaultFileSuffix = ".py"
	// DefaultEntryPoint is the method a test class must expose
	DefaultEntryPoint = "run_test"
	// DefaultSidecarSuffix is the suffix of metadata descriptor files
	DefaultSidecarSuffix = ".meta.yaml"
	// DefaultOutputFile is the default catalog document name
	DefaultOutputFile = "test-catalog.json"
	// DefaultOutputDir is the default output directory
	DefaultOutputDir = "."
	// DefaultOutputFormat is the default catalog document format
	DefaultOutputFormat = FormatJSON
	// DefaultBuildTimeout bounds a whole catalog build
	DefaultBuildTimeout = 5 * time.Minute
	// DefaultLogLevel is the default zap level
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default zap encoder
	DefaultLogFormat = "console"
	// DefaultConfigName is the config file looked up in the working directory
	DefaultConfigName = "testcat"
)

// Catalog document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"__pycache__",
	".git",
	".tox",
	".venv",
	"venv",
}
