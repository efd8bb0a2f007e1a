package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name     string
		logsDir  string
		baseName string
		want     string
	}{
		{
			name:     "basic path",
			logsDir:  "plannerlogs",
			baseName: "planner",
			want:     filepath.Join("plannerlogs", "planner.20260212_213836.log"),
		},
		{
			name:     "relative path with dot",
			logsDir:  "./plannerlogs",
			baseName: "planner",
			want:     filepath.Join(".", "plannerlogs", "planner.20260212_213836.log"),
		},
		{
			name:     "absolute path",
			logsDir:  filepath.Join("/var", "log", "strikerbot"),
			baseName: "planner-compare",
			want:     filepath.Join("/var", "log", "strikerbot", "planner-compare.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.baseName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
