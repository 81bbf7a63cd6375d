package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// Store runs queries for a session. *rowstore.Store implements it.
type Store interface {
	Query(ctx context.Context, query string) (*rowstore.Rows, error)
	Exec(ctx context.Context, query string) (int64, error)
	Escape(value string) string
	HostInfo() string
	Close() error
}

// Opener connects a Store for the current options.
type Opener func(c *options.Context) (Store, error)

// DriverOpener returns an Opener backed by rowstore.Open.
func DriverOpener(driver string, opts ...rowstore.Option) Opener {
	return func(c *options.Context) (Store, error) {
		s, err := rowstore.Open(driver, c, opts...)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return s, nil
	}
}

// Config wires a Session to its collaborators.
type Config struct {
	// Open connects the row store. Required.
	Open Opener

	// Prompter asks the user for passwords. Without one, every prompt fails.
	Prompter Prompter

	// AllowNullAuthTok lets a NULL stored password match any input.
	AllowNullAuthTok bool

	// QueryTimeout bounds every single query. Zero means no limit.
	QueryTimeout time.Duration

	// PID is written to the log pid column. Defaults to the process id.
	PID int
}

// Request describes the caller of one operation.
type Request struct {
	User  string
	RHost string

	// AuthTok is a password obtained by an earlier step, if any.
	AuthTok []byte

	// OldAuthTok is the current password obtained by an earlier step, if any.
	OldAuthTok []byte

	// Silent forbids prompting.
	Silent bool

	// ChangeExpired restricts ChangePassword to expired passwords.
	ChangeExpired bool

	// Privileged skips the current password check on ChangePassword.
	Privileged bool

	// Preliminary makes ChangePassword only check that the store is reachable.
	Preliminary bool
}

// Session holds the options and the connection of one caller. It is not
// safe for concurrent use.
type Session struct {
	cfg   Config
	opts  *options.Context
	store Store

	authTok    *strbuf.Buffer
	oldAuthTok *strbuf.Buffer
}

// NewSession returns a session with default options.
func NewSession(cfg Config) *Session {
	if cfg.PID == 0 {
		cfg.PID = os.Getpid()
	}

	return &Session{cfg: cfg, opts: options.New()}
}

// Options exposes the session options.
func (s *Session) Options() *options.Context {
	return s.opts
}

// Configure applies argument-style options, then the configuration file
// named by config_file. An open connection is dropped when an argument
// changed the options. Errors reading the configuration file are logged and
// otherwise ignored, unless memory ran out.
func (s *Session) Configure(args []string) error {
	changed, err := options.ParseArgs(s.opts, args)
	if err != nil {
		return fmt.Errorf("failed to parse arguments: %w", err)
	}

	if changed {
		s.closeStore()
	}

	if !s.opts.ConfigFile.IsSet() {
		return nil
	}

	path := s.opts.ConfigFile.String()

	err = options.ReadConfigFile(s.opts, path)

	switch {
	case errors.Is(err, strbuf.ErrAlloc):
		return fmt.Errorf("failed to read %s: %w", path, err)
	case err != nil:
		log.Error().Err(err).Str("file", path).Msg("failed to read configuration file")
	}

	return nil
}

// AuthTok returns the password collected by the last successful prompt, or
// nil.
func (s *Session) AuthTok() []byte {
	if s.authTok == nil {
		return nil
	}

	return s.authTok.Bytes()
}

// OldAuthTok returns the current password proven by the last password
// change, or nil.
func (s *Session) OldAuthTok() []byte {
	if s.oldAuthTok == nil {
		return nil
	}

	return s.oldAuthTok.Bytes()
}

// Close drops the connection and wipes every secret held by the session.
func (s *Session) Close() error {
	err := s.closeStore()

	s.authTok.Destroy()
	s.authTok = nil
	s.oldAuthTok.Destroy()
	s.oldAuthTok = nil
	s.opts.Destroy()

	return err
}

func (s *Session) closeStore() error {
	if s.store == nil {
		return nil
	}

	err := s.store.Close()
	s.store = nil

	if s.opts.Verbose {
		log.Debug().Msg("database connection closed")
	}

	return err //nolint:wrapcheck
}

// open connects the store unless a connection is already held.
func (s *Session) open() error {
	if s.store != nil {
		return nil
	}

	if s.cfg.Open == nil {
		return fmt.Errorf("%w: no store opener configured", ErrMissingOption)
	}

	store, err := s.cfg.Open(s.opts)
	if err != nil {
		return err
	}

	s.store = store

	return nil
}

// openOutcome maps a connection failure.
func openOutcome(err error) Outcome {
	if errors.Is(err, rowstore.ErrDatabase) {
		return OutcomeAuthInfoUnavail
	}

	return OutcomeServiceErr
}

// finish runs at the end of every operation.
func (s *Session) finish(operation string, o Outcome, err error) (Outcome, error) {
	if s.opts.DisconnectEveryOp {
		if cerr := s.closeStore(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close database connection")
		}
	}

	observe(operation, o)

	if s.opts.Verbose {
		log.Debug().Str("operation", operation).Str("outcome", o.String()).AnErr("cause", err).
			Msg("operation finished")
	}

	return o, err
}

func (s *Session) verifier() *credential.Verifier {
	return credential.NewVerifier(s.opts.Params())
}

func (s *Session) nullPolicy() credential.NullPolicy {
	if s.cfg.AllowNullAuthTok {
		return credential.NullMatches
	}

	return credential.NullMismatches
}

// logger returns a logger tagged with the request.
func (s *Session) logger(operation string, req Request) zerolog.Logger {
	return log.With().Str("operation", operation).Str("user", req.User).Str("rhost", req.RHost).Logger()
}

// keep stores a copy of token in secure memory, replacing dst.
func keep(dst **strbuf.Buffer, token []byte) {
	(*dst).Destroy()
	*dst = nil

	buf := strbuf.New(true)
	if err := buf.Append(token); err != nil {
		buf.Destroy()

		return
	}

	*dst = buf
}
