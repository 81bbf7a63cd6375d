package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// terminalPrompter reads answers from a terminal without echo, or line by
// line when input is not a terminal.
type terminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func newTerminalPrompter(in *os.File, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Prompt implements auth.Prompter. End of input yields no answer.
func (p *terminalPrompter) Prompt(_ context.Context, message string, echo bool) ([]byte, error) {
	_, _ = fmt.Fprint(p.out, message+" ")

	fd := int(p.in.Fd()) //nolint:gosec
	if !echo && term.IsTerminal(fd) {
		answer, err := term.ReadPassword(fd)

		_, _ = fmt.Fprintln(p.out)

		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		return answer, nil
	}

	line, err := p.reader.ReadBytes('\n')

	switch {
	case errors.Is(err, io.EOF) && len(line) == 0:
		return nil, nil
	case err != nil && !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("failed to read answer: %w", err)
	}

	return bytes.TrimRight(line, "\r\n"), nil
}
