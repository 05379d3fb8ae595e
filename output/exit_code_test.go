package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name               string
		ioFailed           bool
		loadFailed         bool
		totalFunctions     int
		rejectedFunctions  int
		expected           ExitCode
	}{
		{"no functions at all, clean run", false, false, 0, 0, ExitCodeSuccess},
		{"all functions compiled", false, false, 3, 0, ExitCodeSuccess},
		{"some functions rejected, others compiled", false, false, 3, 1, ExitCodeSuccess},
		{"every function rejected", false, false, 2, 2, ExitCodeError},
		{"file I/O failure takes precedence", true, false, 0, 0, ExitCodeError},
		{"whole-program load failure takes precedence", false, true, 0, 0, ExitCodeError},
		{"I/O failure even with functions compiled", true, false, 3, 0, ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetermineExitCode(tt.ioFailed, tt.loadFailed, tt.totalFunctions, tt.rejectedFunctions)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitCodeSuccess)
	assert.Equal(t, ExitCode(1), ExitCodeError)
}
