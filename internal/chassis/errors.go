package chassis

import (
	"errors"
	"fmt"
)

// Sentinel errors for bootstrap failures that carry no extra structure.
// Callers match them with errors.Is.
var (
	// ErrInvalidConfig marks configuration values rejected outright, such as
	// a relative --basedir.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrResolution marks a base directory that could not be derived from the
	// running program's location.
	ErrResolution = errors.New("base directory resolution failed")

	// ErrUnsafePermissions marks a config file whose mode lets other users
	// write to it.
	ErrUnsafePermissions = errors.New("unsafe config file permissions")
)

// ParseError reports malformed command-line or config-file input. Option
// carries the offending flag name or the file position, whichever applies.
type ParseError struct {
	Option string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Option == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Option, e.Reason)
}

// DuplicateOptionError reports a long-option name collision between groups.
// The registry rejects the whole group that introduced the collision.
type DuplicateOptionError struct {
	Name  string // the colliding long name
	Group string // the group that already owns it
}

func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("option --%s is already registered by group %q", e.Name, e.Group)
}
