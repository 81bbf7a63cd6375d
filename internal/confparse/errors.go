package confparse

import (
	"errors"
	"fmt"
)

// ErrSyntax matches every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("confparse: syntax error")

// SyntaxError reports a token that is not allowed at its position.
type SyntaxError struct {
	Line  int
	Token TokenKind
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unexpected token %s on line %d", e.Token, e.Line)
}

// Is lets errors.Is(err, ErrSyntax) match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
