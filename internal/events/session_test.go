package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_BeginGroupNests(t *testing.T) {
	s := NewSession()
	require.Empty(t, s.Group())

	end := s.BeginGroup()
	outer := s.Group()
	require.NotEmpty(t, outer)

	endInner := s.BeginGroup()
	assert.Equal(t, outer, s.Group(), "an open group is inherited")
	endInner()
	assert.Equal(t, outer, s.Group())

	end()
	assert.Empty(t, s.Group())
	end()
	assert.Empty(t, s.Group(), "calling end twice is harmless")
}

func TestSession_SetGroupRestores(t *testing.T) {
	s := NewSession()
	end := s.BeginGroup()
	defer end()
	outer := s.Group()

	restore := s.SetGroup("forced")
	assert.Equal(t, "forced", s.Group())
	restore()
	assert.Equal(t, outer, s.Group())
}

func TestSession_WithGroupRestoresOnPanic(t *testing.T) {
	s := NewSession()

	require.Panics(t, func() {
		_ = s.WithGroup(func() error {
			restore := s.Disable()
			defer restore()
			panic("boom")
		})
	})
	assert.Empty(t, s.Group())
	assert.True(t, s.Enabled())
}

func TestSession_WithGroupReturnsError(t *testing.T) {
	s := NewSession()
	want := errors.New("nope")
	var seen string
	err := s.WithGroup(func() error {
		seen = s.Group()
		return want
	})
	require.ErrorIs(t, err, want)
	assert.NotEmpty(t, seen)
	assert.Empty(t, s.Group())
}

func TestSession_DisableAndSuspendNest(t *testing.T) {
	s := NewSession()
	r1 := s.Disable()
	r2 := s.Disable()
	assert.False(t, s.Enabled())
	r2()
	assert.False(t, s.Enabled())
	r1()
	assert.True(t, s.Enabled())

	u := s.SuspendUndo()
	assert.False(t, s.RecordUndo())
	u()
	u()
	assert.True(t, s.RecordUndo())
}
