package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	var s Bitmap

	assert.Equal(t, -1, s.First())
	assert.False(t, s.IsSet(3))

	s.Set(3)
	s.Set(70)
	s.Set(200)

	assert.True(t, s.IsSet(70))
	assert.False(t, s.IsSet(71))
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, 3, s.First())

	var got []int
	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	assert.Equal(t, []int{3, 70, 200}, got)

	x := MakeBitmap(100)
	x.Set(3)
	x.Set(99)

	s.AndNot(x)
	assert.Equal(t, 70, s.First())

	s.Clear(70)
	s.Clear(1000)
	assert.Equal(t, 1, s.Size())

	s.Reset()
	assert.Equal(t, 0, s.Size())
}
