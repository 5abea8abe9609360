//go:build contract

package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// testdataDir is the path to the testdata directory.
const testdataDir = "testdata"

// loadGoldenFileRaw reads a fixture from testdata as raw bytes.
func loadGoldenFileRaw(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join(testdataDir, path)
	data, err := os.ReadFile(fullPath)
	require.NoError(t, err, "failed to read golden file %s", fullPath)

	return data
}

// fixtureField reads a JSON path from a fixture, failing the test when it is absent.
func fixtureField(t *testing.T, path, field string) string {
	t.Helper()

	value := gjson.GetBytes(loadGoldenFileRaw(t, path), field)
	require.True(t, value.Exists(), "fixture %s has no %s", path, field)
	return value.String()
}
