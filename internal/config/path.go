package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user and system config directories.
const AppName = "topic-provisioner"

// FindConfigPath returns the first existing config file among the usual locations,
// or "" when there is none and defaults should be used.
func FindConfigPath() string {
	for _, p := range configCandidates() {
		if p == "" {
			continue
		}
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func configCandidates() []string {
	names := []string{AppName + ".yml", AppName + ".yaml"}
	candidates := []string{}

	for _, n := range names {
		candidates = append(candidates, "./"+n)
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		for _, dir := range []string{os.Getenv("APPDATA"), os.Getenv("PROGRAMDATA"), home} {
			if dir == "" {
				continue
			}
			for _, n := range names {
				candidates = append(candidates, filepath.Join(dir, AppName, n))
			}
		}
		return candidates
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		for _, n := range names {
			candidates = append(candidates, filepath.Join(xdg, AppName, n))
		}
	}
	if home != "" {
		for _, n := range names {
			candidates = append(candidates, filepath.Join(home, ".config", AppName, n))
		}
	}
	for _, n := range names {
		candidates = append(candidates, filepath.Join("/etc", AppName, n))
	}
	return candidates
}
