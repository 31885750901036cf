package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	prefix   string
	suffix   string
	logger   *zap.Logger
}

// NewScanner creates a new Scanner matching files named prefix*suffix and
// skipping the given directory names
func NewScanner(skipDirs []string, prefix, suffix string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, prefix: prefix, suffix: suffix, logger: zap.NewNop()}
}

// SetLogger sets the logger ignored directories are reported to
func (s *Scanner) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.With(zap.String("component", "scanner"))
}

// Scan finds all test files under root, at any depth. Directories are
// walked in lexical order, so the result is stable for a given tree.
// Any failure to search root is returned as a *DiscoveryError.
func (s *Scanner) Scan(root string) ([]string, error) {
	testfiles := []string{}

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	// WalkDir does not descend into a symlinked root, so walk its target and
	// report paths under root.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != walkRoot && s.skipDirs[d.Name()] {
				s.logger.Debug("skipping ignored directory", zap.String("path", s.under(root, walkRoot, path)))
				return filepath.SkipDir
			}
			return nil
		}

		if s.Matches(d.Name()) {
			testfiles = append(testfiles, s.under(root, walkRoot, path))
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	return testfiles, nil
}

// under maps a path found below walkRoot back below root
func (s *Scanner) under(root, walkRoot, path string) string {
	if walkRoot == root {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// Matches reports whether a file name follows the test file convention.
func (s *Scanner) Matches(name string) bool {
	return len(name) >= len(s.prefix)+len(s.suffix) &&
		strings.HasPrefix(name, s.prefix) && strings.HasSuffix(name, s.suffix)
}
