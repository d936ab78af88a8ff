package urlset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupPreservesFirstOccurrenceOrder(t *testing.T) {
	in := []string{"b", "a", "b", "c", "a"}
	assert.Equal(t, []string{"b", "a", "c"}, Dedup(in))
}

func TestSetAddReturnsFalseOnDuplicate(t *testing.T) {
	s := New()
	assert.True(t, s.Add("x"))
	assert.False(t, s.Add("x"))
	assert.True(t, s.Contains("x"))
	assert.False(t, s.Contains("y"))
}
