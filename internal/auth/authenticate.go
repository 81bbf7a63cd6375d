package auth

import (
	"context"
	"errors"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// Audit messages.
const (
	msgAuthSuccess          = "AUTHENTICATION SUCCESS"
	msgAuthFailure          = "AUTHENTICATION FAILURE"
	msgAuthSuccessFirstPass = "AUTHENTICATION SUCCESS (FIRST_PASS)"
	msgAuthFailureFirstPass = "AUTHENTICATION FAILURE (FIRST_PASS)"
	msgQuerySuccess         = "QUERYING SUCCESS"
	msgQueryFailure         = "QUERYING FAILURE"
	msgAlterSuccess         = "ALTERATION SUCCESS"
	msgAlterFailure         = "ALTERATION FAILURE"
	msgOpenSession          = "OPEN SESSION"
	msgCloseSession         = "CLOSE SESSION"
)

// Authenticate checks the password of req.User.
//
// With use_first_pass or try_first_pass set, req.AuthTok is tried first.
// use_first_pass makes that attempt final, try_first_pass falls back to
// prompting when it fails. A silent request never prompts. A prompted password
// is kept and returned by AuthTok afterwards.
func (s *Session) Authenticate(ctx context.Context, req Request) (Outcome, error) {
	o, err := s.authenticate(ctx, req)

	return s.finish("authenticate", o, err)
}

func (s *Session) authenticate(ctx context.Context, req Request) (Outcome, error) {
	logger := s.logger("authenticate", req)

	if req.User == "" {
		logger.Error().Msg("no user specified")

		return OutcomeUserUnknown, ErrNoUser
	}

	if s.opts.UseFirstPass || s.opts.TryFirstPass {
		if err := s.open(); err != nil {
			return openOutcome(err), err
		}

		err := s.checkPasswd(ctx, req.User, req.AuthTok)
		if err == nil {
			s.audit(ctx, msgAuthSuccessFirstPass, req)

			return OutcomeSuccess, nil
		}

		s.audit(ctx, msgAuthFailureFirstPass, req)

		switch {
		case errors.Is(err, ErrNoSuchUser), errors.Is(err, ErrMismatch):
			if s.opts.UseFirstPass {
				return checkOutcome(err), err
			}
		default:
			return OutcomeServiceErr, err
		}

		if s.opts.Verbose {
			logger.Debug().Err(err).Msg("first pass failed, asking for password")
		}
	}

	if req.Silent {
		if s.opts.Verbose {
			logger.Debug().Msg("silent request, not asking for password")
		}

		return OutcomeAuthErr, ErrNoAuthTok
	}

	passwd, err := s.prompt(ctx, PromptPassword)
	if err != nil {
		return OutcomeServiceErr, err
	}
	defer strbuf.Wipe(passwd)

	if passwd == nil {
		if s.opts.Verbose {
			logger.Debug().Msg("failed to retrieve authentication token")
		}

		return OutcomeAuthErr, ErrNoAuthTok
	}

	keep(&s.authTok, passwd)

	if err := s.open(); err != nil {
		return openOutcome(err), err
	}

	err = s.checkPasswd(ctx, req.User, passwd)
	if err != nil {
		s.audit(ctx, msgAuthFailure, req)

		return checkOutcome(err), err
	}

	s.audit(ctx, msgAuthSuccess, req)

	return OutcomeSuccess, nil
}
