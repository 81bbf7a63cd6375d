package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrLogDirectory is returned if Log.File.Path can not be created.
	ErrLogDirectory = errors.New("config Log.File.Path can not be created")
)

// droppedOutput receives the events zerolog failed to write.
var droppedOutput io.Writer = os.Stderr //nolint:gochecknoglobals

// ErrorHandler reports a log event that was lost. The operation that logged
// it goes on.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(droppedOutput, "mysqlauth: dropped log event: %v\n", err)
}
