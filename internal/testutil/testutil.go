package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// moduleLayout lists the directories every checkout of this module carries.
var moduleLayout = []string{"cmd", "internal", "zbar"}

var (
	rootOnce sync.Once
	rootDir  string
	rootErr  error
)

// ProjectRoot walks up from this source file to the directory holding
// go.mod. The answer is computed once per process.
func ProjectRoot() (string, error) {
	rootOnce.Do(func() {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			rootErr = errors.New("testutil: caller information unavailable")
			return
		}
		rootDir, rootErr = findModuleRoot(filepath.Dir(file))
	})
	return rootDir, rootErr
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for !IsFile(filepath.Join(dir, "go.mod")) {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("testutil: no go.mod above %s", start)
		}
		dir = parent
	}
	return dir, nil
}

// CheckModuleRoot fails unless root has a go.mod and the zbars source tree.
func CheckModuleRoot(root string) error {
	if !IsFile(filepath.Join(root, "go.mod")) {
		return fmt.Errorf("testutil: %s has no go.mod", root)
	}
	var missing []string
	for _, d := range moduleLayout {
		if !IsDir(filepath.Join(root, d)) {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("testutil: %s lacks %s", root, strings.Join(missing, ", "))
	}
	return nil
}

// ModuleRoot is ProjectRoot followed by CheckModuleRoot.
func ModuleRoot() (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	if err := CheckModuleRoot(root); err != nil {
		return "", err
	}
	return root, nil
}

// TestData joins elem onto the module's testdata directory.
func TestData(t testing.TB, elem ...string) string {
	t.Helper()
	root, err := ProjectRoot()
	require.NoError(t, err)
	return filepath.Join(append([]string{root, "testdata"}, elem...)...)
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0o750)
}

// IsFile reports whether path exists and is not a directory.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
