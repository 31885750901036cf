package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testcat/internal/cli"
	"testcat/internal/domain"
	"testcat/internal/storage"
)

const snapTest = `# disruptive;replicated
from tests.d_parent_test import DParentTest


class TestCase(DParentTest):

    def run_test(self, redant):
        pass
`

const rebalanceTest = `# nonDisruptive;distributed,replicated
from tests.nd_parent_test import NdParentTest


class TestCase(NdParentTest):

    def run_test(self, redant):
        pass
`

type fakeViewer struct {
	viewed *domain.CatalogOutput
}

func (v *fakeViewer) View(output *domain.CatalogOutput) error {
	v.viewed = output
	return nil
}

// newProject creates a project directory with a tests/ tree and makes it
// the working directory.
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, "tests", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	chdir(t, dir)
	return dir
}

func run(t *testing.T, viewer *fakeViewer, args ...string) (string, error) {
	t.Helper()
	rootCmd := &cobra.Command{Use: "testcat", SilenceUsage: true, SilenceErrors: true}
	var flags cli.Flags
	cmds := NewCommands(NewRuntime())
	if viewer != nil {
		cmds.View = NewViewCommand(cmds.runtime, viewer)
	}
	cmds.Register(rootCmd, &flags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir := newProject(t, map[string]string{
		"glusterd/test_snap.py":  snapTest,
		"dht/test_rebalance.py":  rebalanceTest,
		"dht/__init__.py":        "",
		"glusterd/helper_ops.py": "# helpers\n",
	})

	out, err := run(t, nil, "build", "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "All test files classified")

	loaded, err := storage.NewFileStorageAt(filepath.Join(dir, "test-catalog.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Meta.TotalTestFiles)

	snap, ok := loaded.Catalog.Get(domain.Disruptive, 0)
	require.True(t, ok)
	assert.Equal(t, "tests.glusterd.test_snap", snap.ImplementationClass.Module)
	assert.Equal(t, "glusterd", snap.ComponentName)

	rebalance, ok := loaded.Catalog.Get(domain.NonDisruptive, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"distributed", "replicated"}, rebalance.VolumeTopologies)
}

func TestBuildCommand_YAMLOutput(t *testing.T) {
	dir := newProject(t, map[string]string{"glusterd/test_snap.py": snapTest})

	_, err := run(t, nil, "build", "--no-progress", "--format", "yaml")
	require.NoError(t, err)

	loaded, err := storage.NewFileStorageAt(filepath.Join(dir, "test-catalog.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Catalog.Count(domain.Disruptive))
}

func TestBuildCommand_Failures(t *testing.T) {
	dir := newProject(t, map[string]string{
		"glusterd/test_snap.py": snapTest,
		"afr/test_heal.py":      "class TestCase:\n    def run_test(self, redant):\n        pass\n",
	})
	output := filepath.Join(dir, "out", "catalog.json")

	out, err := run(t, nil, "build", "--no-progress", "-o", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 test file(s) could not be classified")
	assert.Contains(t, out, "MalformedTestMetadata")

	loaded, err := storage.NewFileStorageAt(output).Load()
	require.NoError(t, err)
	assert.False(t, loaded.Complete())
	assert.Equal(t, 1, loaded.Catalog.Len())

	_, err = run(t, nil, "build", "--no-progress", "--fail-fast", "-o", output)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "test_heal.py")
}

func TestBuildCommand_MissingRoot(t *testing.T) {
	newProject(t, nil)

	_, err := run(t, nil, "build", "--no-progress", "-t", "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "discovery failure")
}

func TestListCommand(t *testing.T) {
	newProject(t, map[string]string{
		"glusterd/test_snap.py": snapTest,
		"dht/test_rebalance.py": rebalanceTest,
	})

	out, err := run(t, nil, "list", "-m", "-f", "dht/*")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 test file(s)")
	assert.Contains(t, out, "tests/dht/test_rebalance.py")
	assert.Contains(t, out, "nonDisruptive")
	assert.NotContains(t, out, "test_snap.py")
}

func TestViewCommand(t *testing.T) {
	newProject(t, map[string]string{"glusterd/test_snap.py": snapTest})

	_, err := run(t, nil, "build", "--no-progress")
	require.NoError(t, err)

	viewer := &fakeViewer{}
	_, err = run(t, viewer, "view")
	require.NoError(t, err)
	require.NotNil(t, viewer.viewed)
	assert.Equal(t, 1, viewer.viewed.Catalog.Len())

	_, err = run(t, viewer, "view", "-o", "missing.json")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
