package stream_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/stream"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// chunkReader hands out at most n bytes per Read call.
type chunkReader struct {
	data []byte
	n    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}

	n := min(r.n, len(p), len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]

	return n, nil
}

func sample(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('a' + i%26)
	}

	return out
}

func readAll(t *testing.T, s *stream.Stream) []byte {
	t.Helper()

	var out []byte

	for {
		c, err := s.GetByte()
		if errors.Is(err, io.EOF) {
			return out
		}

		require.NoError(t, err)

		out = append(out, c)
	}
}

func TestGetByteChunkInvariance(t *testing.T) {
	data := sample(3*stream.BufferSize + 17)

	testCases := []struct {
		name  string
		chunk int
	}{
		{name: "one byte", chunk: 1},
		{name: "odd chunk", chunk: 7},
		{name: "buffer size", chunk: stream.BufferSize},
		{name: "larger than buffer", chunk: 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := stream.New(&chunkReader{data: data, n: tc.chunk})
			assert.Equal(t, data, readAll(t, s))
		})
	}
}

func TestPushbackLaw(t *testing.T) {
	data := sample(2*stream.BufferSize + 3)

	for _, chunk := range []int{1, 5, stream.BufferSize} {
		s := stream.New(&chunkReader{data: data, n: chunk})

		var out []byte

		for {
			c, err := s.GetByte()
			if errors.Is(err, io.EOF) {
				break
			}

			require.NoError(t, err)
			require.NoError(t, s.UngetByte(c))
			require.ErrorIs(t, s.UngetByte(c), stream.ErrPushback)

			again, err := s.GetByte()
			require.NoError(t, err)
			require.Equal(t, c, again)

			out = append(out, again)
		}

		assert.Equal(t, data, out, "chunk %d", chunk)
	}
}

func TestUngetSubstitutesByte(t *testing.T) {
	s := stream.New(strings.NewReader("ab"))

	c, err := s.GetByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), c)

	require.NoError(t, s.UngetByte('x'))

	assert.Equal(t, []byte("xb"), readAll(t, s))
}

func TestUngetBeforeFirstRead(t *testing.T) {
	s := stream.New(strings.NewReader("bc"))

	require.NoError(t, s.UngetByte('a'))
	assert.Equal(t, []byte("abc"), readAll(t, s))
}

func TestSkipWhileAndReadUntil(t *testing.T) {
	input := "   \t name = value;rest"

	for _, chunk := range []int{1, 2, 3, 64} {
		s := stream.New(&chunkReader{data: []byte(input), n: chunk})

		require.NoError(t, s.SkipWhile(" \t"))

		name := strbuf.New(false)
		delim, err := s.ReadUntil("= \t", name)
		require.NoError(t, err)
		assert.Equal(t, byte(' '), delim)
		assert.Equal(t, "name", name.String())

		require.NoError(t, s.SkipWhile(" "))

		c, err := s.GetByte()
		require.NoError(t, err)
		assert.Equal(t, byte('='), c)

		require.NoError(t, s.SkipWhile(" "))

		value := strbuf.New(false)
		delim, err = s.ReadUntil(";", value)
		require.NoError(t, err)
		assert.Equal(t, byte(';'), delim)
		assert.Equal(t, "value", value.String())

		c, err = s.GetByte()
		require.NoError(t, err)
		assert.Equal(t, byte(';'), c)

		rest := strbuf.New(false)
		_, err = s.ReadUntil("\n", rest)
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "rest", rest.String())
	}
}

func TestReadUntilAcrossBuffers(t *testing.T) {
	data := append(sample(stream.BufferSize*2+100), '\n')
	s := stream.New(&chunkReader{data: data, n: stream.BufferSize})

	got := strbuf.New(true)
	delim, err := s.ReadUntil("\n", got)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), delim)
	assert.Equal(t, data[:len(data)-1], got.Bytes())
}

func TestEOFIsSticky(t *testing.T) {
	s := stream.New(strings.NewReader(""))

	_, err := s.GetByte()
	require.ErrorIs(t, err, io.EOF)
	require.NotErrorIs(t, err, stream.ErrIO)

	_, err = s.GetByte()
	require.ErrorIs(t, err, io.EOF)

	require.ErrorIs(t, s.SkipWhile(" "), io.EOF)
}

func TestReaderErrorIsIO(t *testing.T) {
	s := stream.New(iotest.ErrReader(errors.New("disk on fire"))) //nolint:err113

	_, err := s.GetByte()
	require.ErrorIs(t, err, stream.ErrIO)
	require.NotErrorIs(t, err, io.EOF)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pam_mysql.conf")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	s, err := stream.Open(path)
	require.NoError(t, err)

	assert.Equal(t, []byte("abc"), readAll(t, s))
	require.NoError(t, s.Close())

	_, err = stream.Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, stream.ErrIO)
}

func TestHalfReader(t *testing.T) {
	data := sample(stream.BufferSize + 1)
	s := stream.New(iotest.HalfReader(bytes.NewReader(data)))

	assert.Equal(t, data, readAll(t, s))
}
