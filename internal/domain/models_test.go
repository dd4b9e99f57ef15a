package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathChildDoesNotAlias(t *testing.T) {
	parent := make(Path, 1, 4)
	parent[0] = 2

	a := parent.Child(0)
	b := parent.Child(1)

	assert.Equal(t, Path{2, 0}, a)
	assert.Equal(t, Path{2, 1}, b)
	assert.Equal(t, Path{2}, parent)
}

func TestPathCompare(t *testing.T) {
	assert.Equal(t, 0, Path{1, 2}.Compare(Path{1, 2}))
	assert.Equal(t, -1, Path{1}.Compare(Path{1, 0}))
	assert.Equal(t, 1, Path{2}.Compare(Path{1, 9}))
	assert.Equal(t, -1, Path{}.Compare(Path{0}))
	assert.True(t, Path{3, 1}.Equal(Path{3, 1}))
	assert.False(t, Path{3, 1}.Equal(Path{3}))
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "1/0/3", Path{1, 0, 3}.Key())
	assert.Equal(t, "[]", Path{}.String())
}

func TestErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("capture %s: %w", "TextEdit", ErrTimeout)
	assert.True(t, IsCaptureError(wrapped))
	assert.False(t, IsExecutionError(wrapped))

	stale := fmt.Errorf("%w: index 4 out of range", ErrStaleTree)
	assert.True(t, IsExecutionError(stale))
	assert.False(t, IsCaptureError(stale))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "TextEdit (pid 42)", Target{PID: 42, Name: "TextEdit"}.String())
	assert.Equal(t, "pid 7", Target{PID: 7}.String())
}
