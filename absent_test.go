package dlpc1438

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sysfs nack", errNack, true},
		{"wrapped nack", &TransportError{Bus: "i2c", Op: "probe", Err: errNack}, true},
		{"no such device", fmt.Errorf("sysfs-i2c: %v", "no such device or address"), true},
		{"busy", errors.New("sysfs-i2c: device or resource busy"), false},
		{"timeout", errors.New("i2c: timed out"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAbsent(tt.err); got != tt.want {
				t.Errorf("isAbsent(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
