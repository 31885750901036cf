package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir, err := os.MkdirTemp("", "testcat-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create test files
	testFiles := []string{
		"functional/glusterd/test_snap.py",
		"functional/glusterd/test_peer.py",
		"functional/dht/test_rebalance.py",
		"functional/dht/nested/deeper/test_layout.py",
		"functional/dht/helper.py",
		"functional/dht/test_notes.txt",
		"functional/__pycache__/test_snap.py",
		"test_top.py",
		"conftest.py",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("# disruptive;rep\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"__pycache__"}, "test", ".py")

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "functional/dht/nested/deeper/test_layout.py"),
			filepath.Join(tmpDir, "functional/dht/test_rebalance.py"),
			filepath.Join(tmpDir, "functional/glusterd/test_peer.py"),
			filepath.Join(tmpDir, "functional/glusterd/test_snap.py"),
			filepath.Join(tmpDir, "test_top.py"),
		}
		if len(results) != len(expected) {
			t.Fatalf("expected %d test files, got %d: %v", len(expected), len(results), results)
		}
		for i := range expected {
			if results[i] != expected[i] {
				t.Errorf("result %d: expected %s, got %s", i, expected[i], results[i])
			}
		}
	})

	t.Run("scan is deterministic", func(t *testing.T) {
		first, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("scan order differs at %d: %s vs %s", i, first[i], second[i])
			}
		}
	})

	t.Run("empty directory is not an error", func(t *testing.T) {
		empty := filepath.Join(tmpDir, "empty")
		if err := os.MkdirAll(empty, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		results, err := scanner.Scan(empty)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("expected empty non-nil result, got %v", results)
		}
	})

	t.Run("returns discovery failure for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if !errors.Is(err, ErrDiscoveryFailure) {
			t.Errorf("expected discovery failure, got %v", err)
		}
		var discoveryErr *DiscoveryError
		if !errors.As(err, &discoveryErr) || discoveryErr.Root != "/non/existent/path" {
			t.Errorf("expected *DiscoveryError naming the root, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected the not-exist cause to be kept, got %v", err)
		}
	})

	t.Run("returns discovery failure for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "test_top.py"))
		if !errors.Is(err, ErrDiscoveryFailure) {
			t.Errorf("expected discovery failure, got %v", err)
		}
	})
}

func TestScanner_SymlinkedRoot(t *testing.T) {
	tmpDir := t.TempDir()
	realRoot := filepath.Join(tmpDir, "real")
	testFile := filepath.Join(realRoot, "glusterd", "test_snap.py")
	if err := os.MkdirAll(filepath.Dir(testFile), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("# disruptive;replicated\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	link := filepath.Join(tmpDir, "link")
	if err := os.Symlink(realRoot, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	results, err := NewScanner(nil, "test", ".py").Scan(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(link, "glusterd", "test_snap.py")
	if len(results) != 1 || results[0] != expected {
		t.Errorf("expected [%s] reported under the link, got %v", expected, results)
	}
}

func TestScanner_LogsIgnoredDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	for _, file := range []string{"venv/lib/test_vendored.py", "dht/test_rebalance.py"} {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("# disruptive;rep\n"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	core, logs := observer.New(zapcore.DebugLevel)
	scanner := NewScanner([]string{"venv"}, "test", ".py")
	scanner.SetLogger(zap.New(core))

	results, err := scanner.Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only dht/test_rebalance.py, got %v", results)
	}

	skipped := logs.FilterMessage("skipping ignored directory").All()
	if len(skipped) != 1 {
		t.Fatalf("expected one skipped directory entry, got %d", len(skipped))
	}
	if got := skipped[0].ContextMap()["path"]; got != filepath.Join(tmpDir, "venv") {
		t.Errorf("expected skipped path %s, got %v", filepath.Join(tmpDir, "venv"), got)
	}
}

func TestScanner_Matches(t *testing.T) {
	scanner := NewScanner(nil, "test", ".py")

	tests := []struct {
		name     string
		expected bool
	}{
		{"test_snap.py", true},
		{"test.py", true},
		{"testsnap.py", true},
		{"snap_test.py", false},
		{"test_snap.pyc", false},
		{"test_snap.txt", false},
		{"Test_snap.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanner.Matches(tt.name); got != tt.expected {
				t.Errorf("Matches(%q) = %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}
}
