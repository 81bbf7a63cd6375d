package uniuri

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLenChars(t *testing.T) {
	testCases := []struct {
		name   string
		length int
		chars  []byte
	}{
		{name: "crypt salt", length: 16, chars: CryptChars},
		{name: "drupal salt", length: 8, chars: Itoa64},
		{name: "joomla salt", length: 32, chars: PrintableChars},
		{name: "long string", length: 5000, chars: []byte("ab")},
		{name: "zero length", length: 0, chars: CryptChars},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewLenChars(tc.length, tc.chars)
			require.NoError(t, err)
			assert.Len(t, s, tc.length)

			for i := 0; i < len(s); i++ {
				assert.Contains(t, string(tc.chars), string(s[i]))
			}
		})
	}
}

func TestNewLenCharsCharset(t *testing.T) {
	_, err := NewLenChars(4, []byte("a"))
	require.ErrorIs(t, err, ErrCharset)

	_, err = NewLenChars(4, bytes.Repeat([]byte("a"), 257))
	require.ErrorIs(t, err, ErrCharset)
}

func TestReaderFailure(t *testing.T) {
	saved := Reader
	Reader = iotest.ErrReader(errors.New("no entropy")) //nolint:err113

	t.Cleanup(func() { Reader = saved })

	_, err := NewLenChars(8, CryptChars)
	require.Error(t, err)

	_, err = Bytes(4)
	require.Error(t, err)
}

func TestPrintableChars(t *testing.T) {
	assert.Len(t, PrintableChars, 94)
	assert.Equal(t, byte('!'), PrintableChars[0])
	assert.Equal(t, byte('~'), PrintableChars[93])
	assert.NotContains(t, string(PrintableChars), " ")
}
