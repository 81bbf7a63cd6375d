package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/tmpl"
)

const (
	passwdQuery      = "SELECT %[passwdcolumn] FROM %[table] WHERE %[usercolumn] = '%s'"
	statQuery        = "SELECT %[statcolumn], %[passwdcolumn] FROM %[table] WHERE %[usercolumn] = '%s'"
	updateQuery      = "UPDATE %[table] SET %[passwdcolumn] = '%s' WHERE %[usercolumn] = '%s'"
	whereSuffix      = " AND (%S)"
	unknownHost      = "(unknown)"
	currentTimestamp = "CURRENT_TIMESTAMP"
)

// format expands template with the session options, escaping for the store.
func (s *Session) format(template string, args ...any) (*strbuf.Buffer, error) {
	return tmpl.Format(template, s.opts.Lookup, s.store.Escape, true, args...) //nolint:wrapcheck
}

// withWhere appends the where clause placeholder when the option is set.
func (s *Session) withWhere(template string, args ...any) (string, []any) {
	if s.opts.Where.IsSet() {
		return template + whereSuffix, append(args, s.opts.Where.String())
	}

	return template, args
}

func (s *Session) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.QueryTimeout)
	}

	return context.WithCancel(ctx)
}

// queryRow runs query and returns its only row.
func (s *Session) queryRow(ctx context.Context, query *strbuf.Buffer, columns int) ([]sql.NullString, error) {
	if s.opts.Verbose {
		log.Debug().Str("query", query.String()).Msg("running query")
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	rows, err := s.store.Query(ctx, query.String())
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	switch rows.Len() {
	case 0:
		log.Error().Msg("SELECT returned no result")

		return nil, ErrNoSuchUser
	case 1:
	default:
		log.Error().Int("rows", rows.Len()).Msg("SELECT returned an indetermined result")

		return nil, ErrAmbiguousUser
	}

	row := rows.Values[0]
	if len(row) < columns {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrShortResult, columns, len(row))
	}

	return row, nil
}

// checkPasswd compares passwd with the stored password of user. A nil passwd
// never matches a stored value.
func (s *Session) checkPasswd(ctx context.Context, user string, passwd []byte) error {
	template, args := passwdQuery, []any{user}

	if s.opts.Select.IsSet() {
		template = s.opts.Select.String()
	} else {
		template, args = s.withWhere(template, args...)
	}

	query, err := s.format(template, args...)
	if err != nil {
		return err
	}
	defer query.Destroy()

	row, err := s.queryRow(ctx, query, 1)
	if err != nil {
		return err
	}

	stored := row[0]

	if stored.Valid && passwd == nil {
		return ErrMismatch
	}

	result, err := s.verifier().Verify(s.opts.CryptType, passwd, stored, s.nullPolicy())

	switch result {
	case credential.Success:
		return nil
	case credential.Mismatch:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMismatch, err)
		}

		return ErrMismatch
	default:
		return err
	}
}

// userStat returns the status bits of user. A NULL status reads as expired
// and a NULL password sets the null password bit.
func (s *Session) userStat(ctx context.Context, user string) (int, error) {
	template, args := s.withWhere(statQuery, user)

	query, err := s.format(template, args...)
	if err != nil {
		return 0, err
	}
	defer query.Destroy()

	row, err := s.queryRow(ctx, query, 2) //nolint:mnd
	if err != nil {
		return 0, err
	}

	var stat int

	if row[0].Valid {
		stat = options.ParseNumeric(row[0].String) &^ models.StatusNullPasswd
	} else {
		stat = models.StatusExpired
	}

	if !row[1].Valid {
		stat |= models.StatusNullPasswd
	}

	return stat, nil
}

// updatePasswd stores passwd for user in the configured scheme.
func (s *Session) updatePasswd(ctx context.Context, user string, passwd []byte) error {
	encrypted, err := s.verifier().Generate(s.opts.CryptType, passwd)
	if err != nil {
		return err //nolint:wrapcheck
	}

	template, args := s.withWhere(updateQuery, encrypted, user)

	query, err := s.format(template, args...)
	if err != nil {
		return err
	}
	defer query.Destroy()

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if _, err := s.store.Exec(ctx, query.String()); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

// sqlLog writes an audit record when sqllog is enabled.
func (s *Session) sqlLog(ctx context.Context, msg string, req Request) error {
	if !s.opts.SQLLog {
		return nil
	}

	required := []struct {
		name string
		set  bool
	}{
		{"logtable", s.opts.LogTable.IsSet()},
		{"logmsgcolumn", s.opts.LogMsgColumn.IsSet()},
		{"logusercolumn", s.opts.LogUserColumn.IsSet()},
		{"loghostcolumn", s.opts.LogHostColumn.IsSet()},
		{"logtimecolumn", s.opts.LogTimeColumn.IsSet()},
	}

	for _, r := range required {
		if !r.set {
			return fmt.Errorf("%w: sqllog set but %s not set", ErrMissingOption, r.name)
		}
	}

	host := s.store.HostInfo()
	if host == "" {
		host = unknownHost
	}

	columns := "%[logmsgcolumn], %[logusercolumn], %[loghostcolumn]"
	values := "'%s', '%s', '%s'"
	args := []any{msg, req.User, host}

	if s.opts.LogRHostColumn.IsSet() {
		rhost := req.RHost
		if rhost == "" {
			rhost = unknownHost
		}

		columns += ", %[logrhostcolumn]"
		values += ", '%s'"
		args = append(args, rhost)
	}

	if s.opts.LogPIDColumn.IsSet() && s.cfg.PID > 0 {
		columns += ", %[logpidcolumn]"
		values += ", '%u'"
		args = append(args, s.cfg.PID)
	}

	template := "INSERT INTO %[logtable] (" + columns + ", %[logtimecolumn]) VALUES (" +
		values + ", " + currentTimestamp + ")"

	query, err := s.format(template, args...)
	if err != nil {
		return err
	}
	defer query.Destroy()

	if s.opts.Verbose {
		log.Debug().Str("query", query.String()).Msg("writing audit record")
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	if _, err := s.store.Exec(ctx, query.String()); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

// audit writes an audit record, logging failures.
func (s *Session) audit(ctx context.Context, msg string, req Request) {
	if err := s.sqlLog(ctx, msg, req); err != nil {
		log.Error().Err(err).Str("message", msg).Str("user", req.User).Msg("failed to write audit record")
	}
}

// checkOutcome maps a password check failure.
func checkOutcome(err error) Outcome {
	switch {
	case errors.Is(err, ErrNoSuchUser):
		return OutcomeUserUnknown
	case errors.Is(err, ErrMismatch):
		return OutcomeAuthErr
	default:
		return OutcomeServiceErr
	}
}

var _ Store = (*rowstore.Store)(nil)
