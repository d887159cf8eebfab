package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 3, 10, 19, 5, 0, 0, time.UTC), ID: 1001}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorErrors(t *testing.T) {
	c, err := ParseCursor("  ")
	assert.NoError(t, err)
	assert.Nil(t, c)

	for _, raw := range []string{"%%%", "bm8tc2VwYXJhdG9y", "bm90LWEtdGltZXwx", "MjAyNC0wMy0xMFQxOTowNTowMFp8eA=="} {
		_, err := ParseCursor(raw)
		assert.Error(t, err, raw)
	}
}

func TestCursorAfter(t *testing.T) {
	at := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	c := Cursor{CreatedAt: at, ID: 5}
	assert.True(t, c.After(at.Add(-time.Minute), 9))
	assert.True(t, c.After(at, 4))
	assert.False(t, c.After(at, 5))
	assert.False(t, c.After(at.Add(time.Minute), 1))
}
