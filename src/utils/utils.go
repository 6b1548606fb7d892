package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// FindProjectRoot walks up from this source file to the directory holding
// go.mod. The test harness uses it to locate the migrations directory no
// matter which package the test runs from.
func FindProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("project root not found: no go.mod above " + filepath.Dir(filename))
		}
		dir = parent
	}
}
