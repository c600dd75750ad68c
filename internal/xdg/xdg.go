// Package xdg provides helpers to resolve XDG Base Directory paths for sensorctl.
// Configuration lives under the config dir; the file-backed token keyring and
// diagnostic logs live under the state dir.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "sensorctl"

// ConfigDir returns the XDG config directory for sensorctl.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/sensorctl when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for sensorctl.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/sensorctl when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
