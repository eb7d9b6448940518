// SPDX-License-Identifier: AGPL-3.0-or-later

// Package golden compares rendered output with files under a package's testdata directory.
// Run tests with -update to rewrite the files.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var Update = flag.Bool("update", false, "update golden files")

// TestdataDir returns the testdata directory next to the calling test file.
func TestdataDir(t *testing.T) string {
	t.Helper()
	return testdataDir(t, 2)
}

func testdataDir(t *testing.T, skip int) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(skip)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Assert checks got against testdata/<name>.golden, rewriting it under -update.
func Assert(t *testing.T, name, got string) {
	t.Helper()
	dir := testdataDir(t, 2)
	if *Update {
		Write(t, dir, name, got)
		return
	}
	assert.Equal(t, Read(t, dir, name), got, "golden %s (run with -update to refresh)", name)
}

func Read(t *testing.T, testdataDir, name string) string {
	t.Helper()
	safeName(t, name)

	path := filepath.Join(testdataDir, name+".golden")
	data, err := os.ReadFile(path) //nolint:gosec // testdata path controlled by test
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("read golden %s: %v", path, err)
	}
	return string(data)
}

func Write(t *testing.T, testdataDir, name, content string) {
	t.Helper()
	safeName(t, name)

	if err := os.MkdirAll(testdataDir, 0o750); err != nil {
		t.Fatalf("mkdir testdata: %v", err)
	}
	path := filepath.Join(testdataDir, name+".golden")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}

func safeName(t *testing.T, name string) {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
	}
}
