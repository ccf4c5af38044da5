package chassis

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// ResolveBaseDir determines the installation directory. An explicit directory
// must already be absolute; a relative one is a configuration error, never
// silently resolved. Without an explicit directory the base dir is derived
// from the running program's own location, the parent of its bin directory,
// which keeps file lookups working after a later daemonize chdirs away.
func ResolveBaseDir(explicit, programPath string) (string, error) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			return "", fmt.Errorf("%w: --basedir must be an absolute path, got %q", ErrInvalidConfig, explicit)
		}
		return filepath.Clean(explicit), nil
	}

	if programPath == "" {
		return "", fmt.Errorf("%w: program path unknown", ErrResolution)
	}
	abs, err := filepath.Abs(programPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolution, err)
	}

	// <base>/bin/<prog> -> <base>
	return filepath.Dir(filepath.Dir(abs)), nil
}

// NormalizePath anchors a relative path at baseDir. Absolute values pass
// through unchanged, which also makes the function idempotent.
func NormalizePath(value, baseDir string) string {
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(baseDir, value)
}

// DefaultPluginDir is where plugins live when --plugin-dir is not given.
func DefaultPluginDir(baseDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(baseDir, "bin")
	}
	return filepath.Join(baseDir, "lib", "chassis", "plugins")
}

// DefaultLuaPath returns the LUA_PATH seeded for the embedded interpreter
// when neither the flag nor the environment provides one.
func DefaultLuaPath(baseDir, programName string) string {
	return filepath.Join(baseDir, "lib", programName, "lua", "?.lua")
}

// DefaultLuaCPath returns the LUA_CPATH counterpart. Native module suffixes
// differ per platform.
func DefaultLuaCPath(baseDir, programName string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(baseDir, "bin", "lua-?.dll")
	}
	return filepath.Join(baseDir, "lib", programName, "lua", "?.so")
}
