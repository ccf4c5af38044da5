package chassis

import (
	"fmt"
	"os"
	"strconv"
)

// WritePidFile creates or truncates path and writes the current process id as
// decimal text. Failures carry the underlying OS error.
func WritePidFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("opening pid file %s failed: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("writing pid file %s failed: %w", path, err)
	}
	return nil
}
