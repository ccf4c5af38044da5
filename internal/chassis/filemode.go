package chassis

import (
	"fmt"
	"os"
	"runtime"
)

// CheckFileMode rejects config files that other users could have written to.
// The file's contents are not trusted until this passes. Windows has no
// comparable permission bits, so the check is a no-op there.
func CheckFileMode(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return &ParseError{Option: path, Reason: err.Error()}
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	if perm := fi.Mode().Perm(); perm&0022 != 0 {
		return fmt.Errorf("%w: %s is writable by group or world (mode %04o)", ErrUnsafePermissions, path, perm)
	}
	return nil
}
