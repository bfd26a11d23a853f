package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}
