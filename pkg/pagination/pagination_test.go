package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 12, 30, 0, 123456789, time.UTC)
	id := uuid.New()

	encoded := EncodeCursor(Cursor{At: at, ID: id})
	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, decoded.At.Equal(at))
	assert.Equal(t, id, decoded.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cursor, err := ParseCursor("   ")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	for _, raw := range []string{"!!!", encodeRaw("no-separator"), encodeRaw("yesterday|" + uuid.NewString()), encodeRaw(time.Now().Format(time.RFC3339Nano) + "|nope")} {
		_, err := ParseCursor(raw)
		assert.ErrorIs(t, err, ErrInvalidCursor, raw)
	}
}

func TestTrim(t *testing.T) {
	rows, more := Trim([]int{1, 2, 3}, 2)
	assert.Equal(t, []int{1, 2}, rows)
	assert.True(t, more)

	rows, more = Trim([]int{1, 2}, 2)
	assert.Equal(t, []int{1, 2}, rows)
	assert.False(t, more)
}

func encodeRaw(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
