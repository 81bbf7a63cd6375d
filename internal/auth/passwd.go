package auth

import (
	"bytes"
	"context"
	"errors"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// ChangePassword replaces the password of req.User.
//
// Unless req.Privileged is set or the stored password is NULL, the current
// password must be proven first, through req.OldAuthTok when use_first_pass
// or try_first_pass is set, otherwise by prompting. The new password is
// req.AuthTok, or asked for twice.
func (s *Session) ChangePassword(ctx context.Context, req Request) (Outcome, error) {
	o, err := s.changePassword(ctx, req)

	return s.finish("chauthtok", o, err)
}

func (s *Session) changePassword(ctx context.Context, req Request) (Outcome, error) {
	logger := s.logger("chauthtok", req)

	if req.User == "" {
		logger.Error().Msg("no user specified")

		return OutcomeUserUnknown, ErrNoUser
	}

	if err := s.open(); err != nil {
		switch {
		case req.Preliminary:
			return OutcomeTryAgain, err
		case errors.Is(err, rowstore.ErrDatabase):
			return OutcomePermDenied, err
		default:
			return OutcomeServiceErr, err
		}
	}

	if req.Preliminary {
		return OutcomeSuccess, nil
	}

	stat, err := s.userStat(ctx, req.User)
	if err != nil {
		s.audit(ctx, msgQueryFailure, req)

		return OutcomePermDenied, err
	}

	s.audit(ctx, msgQuerySuccess, req)

	if !req.ChangeExpired && stat&models.StatusExpired != 0 {
		return OutcomeAuthTokLockBusy, ErrAccountExpired
	}

	if s.opts.Verbose {
		logger.Debug().Msg("update authentication token")
	}

	if !req.Privileged && stat&models.StatusNullPasswd == 0 {
		if o, err := s.proveOldPasswd(ctx, req); err != nil {
			return o, err
		}
	}

	newPasswd, o, err := s.newPasswd(ctx, req)
	if err != nil {
		return o, err
	}
	defer newPasswd.Destroy()

	if err := s.updatePasswd(ctx, req.User, newPasswd.Bytes()); err != nil {
		s.audit(ctx, msgAlterFailure, req)

		return OutcomeAuthTokErr, err
	}

	if req.AuthTok == nil {
		keep(&s.authTok, newPasswd.Bytes())
	}

	s.audit(ctx, msgAlterSuccess, req)

	return OutcomeSuccess, nil
}

// proveOldPasswd checks the current password of req.User.
func (s *Session) proveOldPasswd(ctx context.Context, req Request) (Outcome, error) {
	if (s.opts.UseFirstPass || s.opts.TryFirstPass) && req.OldAuthTok != nil {
		err := s.checkPasswd(ctx, req.User, req.OldAuthTok)

		switch {
		case err == nil:
			keep(&s.oldAuthTok, req.OldAuthTok)

			return OutcomeSuccess, nil
		case errors.Is(err, ErrMismatch) && !s.opts.UseFirstPass:
		default:
			return checkOutcome(err), err
		}
	}

	if s.opts.UseFirstPass {
		return OutcomeAuthTokRecoveryErr, ErrNoAuthTok
	}

	if req.Silent {
		return OutcomeAuthTokRecoveryErr, ErrNoAuthTok
	}

	old, err := s.prompt(ctx, PromptCurrentPassword)
	if err != nil {
		return OutcomeServiceErr, err
	}
	defer strbuf.Wipe(old)

	if old == nil {
		return OutcomeAuthTokRecoveryErr, ErrNoAuthTok
	}

	if err := s.checkPasswd(ctx, req.User, old); err != nil {
		return checkOutcome(err), err
	}

	keep(&s.oldAuthTok, old)

	return OutcomeSuccess, nil
}

// newPasswd returns the new password in secure memory.
func (s *Session) newPasswd(ctx context.Context, req Request) (*strbuf.Buffer, Outcome, error) {
	if req.AuthTok != nil {
		buf := strbuf.New(true)
		if err := buf.Append(req.AuthTok); err != nil {
			return nil, OutcomeServiceErr, err //nolint:wrapcheck
		}

		return buf, OutcomeSuccess, nil
	}

	if s.opts.UseFirstPass || req.Silent {
		return nil, OutcomeAuthTokRecoveryErr, ErrNoAuthTok
	}

	first, err := s.prompt(ctx, PromptNewPassword)
	if err != nil {
		return nil, OutcomeServiceErr, err
	}
	defer strbuf.Wipe(first)

	second, err := s.prompt(ctx, PromptRetypeNewPassword)
	if err != nil {
		return nil, OutcomeServiceErr, err
	}
	defer strbuf.Wipe(second)

	if first == nil || second == nil {
		return nil, OutcomeAuthTokRecoveryErr, ErrNoAuthTok
	}

	if !bytes.Equal(first, second) {
		return nil, OutcomeAuthTokRecoveryErr, ErrAuthTokMismatch
	}

	buf := strbuf.New(true)
	if err := buf.Append(second); err != nil {
		return nil, OutcomeServiceErr, err //nolint:wrapcheck
	}

	return buf, OutcomeSuccess, nil
}
