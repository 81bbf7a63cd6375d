package auth

import (
	"context"
	"errors"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
)

// AcctMgmt reports whether the account of req.User may be used.
func (s *Session) AcctMgmt(ctx context.Context, req Request) (Outcome, error) {
	o, err := s.acctMgmt(ctx, req)

	return s.finish("acct_mgmt", o, err)
}

func (s *Session) acctMgmt(ctx context.Context, req Request) (Outcome, error) {
	if req.User == "" {
		logger := s.logger("acct_mgmt", req)
		logger.Error().Msg("no user specified")

		return OutcomeUserUnknown, ErrNoUser
	}

	if err := s.open(); err != nil {
		return openOutcome(err), err
	}

	stat, err := s.userStat(ctx, req.User)
	if err != nil {
		s.audit(ctx, msgQueryFailure, req)

		if errors.Is(err, ErrNoSuchUser) {
			return OutcomeUserUnknown, err
		}

		return OutcomeServiceErr, err
	}

	s.audit(ctx, msgQuerySuccess, req)

	switch {
	case stat&models.StatusExpired != 0:
		return OutcomeAcctExpired, ErrAccountExpired
	case stat&models.StatusAuthTokExpired != 0 && stat&models.StatusNullPasswd != 0:
		return OutcomeNewAuthTokReqd, ErrAuthTokExpired
	case stat&models.StatusAuthTokExpired != 0:
		return OutcomeAuthTokExpired, ErrAuthTokExpired
	}

	return OutcomeSuccess, nil
}

// OpenSession records the start of a session.
func (s *Session) OpenSession(ctx context.Context, req Request) (Outcome, error) {
	o, err := s.session(ctx, req, msgOpenSession)

	return s.finish("open_session", o, err)
}

// CloseSession records the end of a session.
func (s *Session) CloseSession(ctx context.Context, req Request) (Outcome, error) {
	o, err := s.session(ctx, req, msgCloseSession)

	return s.finish("close_session", o, err)
}

func (s *Session) session(ctx context.Context, req Request, msg string) (Outcome, error) {
	if req.User == "" {
		return OutcomeUserUnknown, ErrNoUser
	}

	if err := s.open(); err != nil {
		return openOutcome(err), err
	}

	s.audit(ctx, msg, req)

	return OutcomeSuccess, nil
}
