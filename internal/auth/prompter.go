package auth

import (
	"context"
	"errors"
)

// Prompt texts.
const (
	PromptPassword          = "Password:"
	PromptCurrentPassword   = "Current Password:"
	PromptNewPassword       = "New Password:"
	PromptRetypeNewPassword = "Retype New Password:"
)

// ErrNoPrompter is returned when a prompt is needed but none is configured.
var ErrNoPrompter = errors.New("no prompter configured")

// Prompter asks the user a question. A nil answer with a nil error means the
// user gave none.
type Prompter interface {
	Prompt(ctx context.Context, message string, echo bool) ([]byte, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, message string, echo bool) ([]byte, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, message string, echo bool) ([]byte, error) {
	return f(ctx, message, echo)
}

func (s *Session) prompt(ctx context.Context, message string) ([]byte, error) {
	if s.cfg.Prompter == nil {
		return nil, ErrNoPrompter
	}

	return s.cfg.Prompter.Prompt(ctx, message, false) //nolint:wrapcheck
}
