package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer

	out := droppedOutput
	droppedOutput = &buf

	t.Cleanup(func() { droppedOutput = out })

	ErrorHandler(errors.New("disk full"))

	assert.Equal(t, "mysqlauth: dropped log event: disk full\n", buf.String())
}
