package textstra

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	s := Static{4360: "Star Destroyer"}
	text, ok := s.Text(4360)
	assert.True(t, ok)
	assert.Equal(t, "Star Destroyer", text)

	_, ok = s.Text(1)
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	_, ok := Nop{}.Text(4360)
	assert.False(t, ok)
}

func TestOpenMissing(t *testing.T) {
	lib, err := Open(t.TempDir())
	assert.Error(t, err)
	assert.Nil(t, lib)
	if runtime.GOOS != "windows" {
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// a nil library behaves like Nop
	_, ok := lib.Text(1)
	assert.False(t, ok)
	assert.NoError(t, lib.Close())
}
