package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// testModule returns the source of a harness-style test module.
func testModule(annotation string) string {
	return "# " + annotation + `
from tests.d_parent_test import DParentTest


class TestCase(DParentTest):

    def run_test(self, redant):
        redant.volume_start(self.vol_name, self.server_list[0])
`
}
