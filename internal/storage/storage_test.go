// internal/storage/storage_test.go
package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/strikerbot/planner/internal/config"
	"github.com/strikerbot/planner/internal/storage"
	"github.com/strikerbot/planner/internal/storage/memory"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Uploadable = (*memory.Backend)(nil)
)

func TestMemoryBackendIsUploadable(t *testing.T) {
	var b storage.Backend = memory.New(config.MemoryConfig{})
	_, ok := b.(storage.Uploadable)
	assert.True(t, ok)
}
