//go:build !linux

package dlpc1438

import "strings"

var absentMessages = []string{
	"remote I/O error",
	"no such device or address",
	"input/output error",
}

// isAbsent reports whether err means the device did not acknowledge its
// address, as opposed to a bus failure.
func isAbsent(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range absentMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
