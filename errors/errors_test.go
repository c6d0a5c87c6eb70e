package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "looking up job abc123")

	assert.Contains(t, wrapped.Error(), "looking up job abc123")
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrInvalidSchedule))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(New("something else")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(Wrap(ErrNotFound, "context")))
	assert.True(t, IsNotFound(NewNotFound("job %s", "abc")))
}

func TestIsInvalidSchedule(t *testing.T) {
	err := NewInvalidSchedule("interval job missing repeat_interval")

	require.Error(t, err)
	assert.True(t, IsInvalidSchedule(err))
	assert.Contains(t, err.Error(), "repeat_interval")
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.False(t, Is(ErrNotFound, ErrInvalidSchedule))
	assert.False(t, Is(ErrInvalidSchedule, ErrPersistence))
	assert.False(t, Is(ErrPersistence, ErrNotFound))
}

func TestWithHintSurvivesWrapping(t *testing.T) {
	err := WithHint(ErrPersistence, "check database path and permissions")
	wrapped := Wrap(err, "saving job set")

	hints := GetAllHints(wrapped)
	require.Len(t, hints, 1)
	assert.Equal(t, "check database path and permissions", hints[0])
}
