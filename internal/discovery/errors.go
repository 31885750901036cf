package discovery

import (
	"errors"
	"fmt"
	"strings"

	"testcat/internal/domain"
)

var (
	// ErrDiscoveryFailure means the root could not be searched at all.
	ErrDiscoveryFailure = errors.New("discovery failure")
	// ErrMalformedMetadata means a test file has no usable nature/topology annotation.
	ErrMalformedMetadata = errors.New("malformed test metadata")
	// ErrAmbiguousImplementation means zero or several classes qualify as the test implementation.
	ErrAmbiguousImplementation = errors.New("ambiguous test implementation")
	// ErrUnresolvableModule means the file cannot be mapped to an importable module.
	ErrUnresolvableModule = errors.New("unresolvable test module")
)

// kindNames are the names used for each failure kind in reports.
var kindNames = map[error]string{
	ErrMalformedMetadata:       "MalformedTestMetadata",
	ErrAmbiguousImplementation: "AmbiguousTestImplementation",
	ErrUnresolvableModule:      "UnresolvableTestModule",
}

// DiscoveryError is returned when the root path cannot be traversed. It is
// fatal to a build: no catalog is produced.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failure: cannot search %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() []error {
	return []error{ErrDiscoveryFailure, e.Err}
}

// FileError is a failure local to one candidate test file.
type FileError struct {
	Path       string
	Kind       error // One of ErrMalformedMetadata, ErrAmbiguousImplementation, ErrUnresolvableModule
	Msg        string
	Candidates []string // Classes considered, for ambiguous implementations
	Err        error    // Underlying cause, may be nil
}

func (e *FileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v: %s", e.Path, e.Kind, e.Msg)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns the report name of the failure kind.
func (e *FileError) KindName() string {
	if name, ok := kindNames[e.Kind]; ok {
		return name
	}
	return "DiscoveryError"
}

// Failure converts the error into its report entry.
func (e *FileError) Failure() domain.FileFailure {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return domain.FileFailure{
		ModulePath: e.Path,
		Kind:       e.KindName(),
		Message:    msg,
		Candidates: append([]string(nil), e.Candidates...),
	}
}

func malformed(path string, err error, format string, args ...any) *FileError {
	return &FileError{Path: path, Kind: ErrMalformedMetadata, Msg: fmt.Sprintf(format, args...), Err: err}
}

func ambiguous(path string, candidates []string, format string, args ...any) *FileError {
	return &FileError{Path: path, Kind: ErrAmbiguousImplementation, Msg: fmt.Sprintf(format, args...), Candidates: candidates}
}

func unresolvable(path string, err error, format string, args ...any) *FileError {
	return &FileError{Path: path, Kind: ErrUnresolvableModule, Msg: fmt.Sprintf(format, args...), Err: err}
}
