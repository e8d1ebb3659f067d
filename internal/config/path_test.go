package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup is unix only")
	}

	t.Run("xdg config home", func(t *testing.T) {
		work := t.TempDir()
		xdg := t.TempDir()
		chdir(t, work)
		t.Setenv("XDG_CONFIG_HOME", xdg)
		t.Setenv("HOME", t.TempDir())

		want := filepath.Join(xdg, AppName, AppName+".yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(want), 0755))
		require.NoError(t, os.WriteFile(want, []byte("topic: {}\n"), 0644))

		require.Equal(t, want, FindConfigPath())
	})

	t.Run("working directory wins", func(t *testing.T) {
		work := t.TempDir()
		xdg := t.TempDir()
		chdir(t, work)
		t.Setenv("XDG_CONFIG_HOME", xdg)

		require.NoError(t, os.MkdirAll(filepath.Join(xdg, AppName), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(xdg, AppName, AppName+".yml"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(work, AppName+".yml"), nil, 0644))

		require.Equal(t, "./"+AppName+".yml", FindConfigPath())
	})

	t.Run("candidates cover the usual places", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		t.Setenv("HOME", "/home/someone")
		c := configCandidates()
		require.Contains(t, c, "./"+AppName+".yml")
		require.Contains(t, c, filepath.Join("/xdg", AppName, AppName+".yml"))
		require.Contains(t, c, filepath.Join("/home/someone", ".config", AppName, AppName+".yaml"))
		require.Contains(t, c, filepath.Join("/etc", AppName, AppName+".yml"))
	})
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
