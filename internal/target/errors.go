package target

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform is returned when a host has no entry in the
// supported table.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError carries the raw host values and the triple that
// failed to match.
type UnsupportedPlatformError struct {
	OS        string
	Arch      string
	Triple    string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("platform with type %q and architecture %q is not supported (resolved %q); supported platforms: %s",
		e.OS, e.Arch, e.Triple, strings.Join(e.Supported, ", "))
}

// Is reports whether target matches ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}
