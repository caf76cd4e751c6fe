//go:build linux

package dlpc1438

import (
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// Errnos the i2c-dev driver reports when no device acknowledges the address.
var absentErrnos = []unix.Errno{unix.EREMOTEIO, unix.ENXIO, unix.EIO}

// isAbsent reports whether err means the device did not acknowledge its
// address, as opposed to a bus failure. periph's sysfs bus formats the errno
// into its message, so both the wrapped value and the text are checked.
func isAbsent(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, e := range absentErrnos {
		if errors.Is(err, e) || strings.Contains(msg, e.Error()) {
			return true
		}
	}
	return false
}
