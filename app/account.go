package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/logger/adapter/gormlog"
)

// Environment variables carrying tokens from an earlier step, the way
// pam_exec exposes them.
const (
	EnvAuthTok    = "MYSQLAUTH_AUTHTOK"
	EnvOldAuthTok = "MYSQLAUTH_OLDAUTHTOK"
)

func init() { //nolint: gochecknoinits
	for _, cmd := range []*cobra.Command{authCmd, acctCmd, passwdCmd, openSessionCmd, closeSessionCmd} {
		cmd.Flags().StringVarP(&request.User, "user", "u", "", "user name")
		cmd.Flags().StringVar(&request.RHost, "rhost", "", "remote host of the user")
		_ = cmd.MarkFlagRequired("user")
	}

	for _, cmd := range []*cobra.Command{authCmd, passwdCmd} {
		cmd.Flags().BoolVarP(&request.Silent, "silent", "s", false, "never prompt")
	}

	passwdCmd.Flags().BoolVar(&request.ChangeExpired, "change-expired", false,
		"only change an expired password")
	passwdCmd.Flags().BoolVar(&request.Privileged, "privileged", false,
		"skip the current password check")
	passwdCmd.Flags().BoolVar(&request.Preliminary, "prelim", false,
		"only check that the database is reachable")

	sessionCmd.AddCommand(openSessionCmd, closeSessionCmd)
	rootCmd.AddCommand(authCmd, acctCmd, passwdCmd, sessionCmd)
}

// OutcomeError carries a failed operation outcome to the exit code.
type OutcomeError struct {
	Outcome auth.Outcome
	Err     error
}

func (e *OutcomeError) Error() string {
	if e.Err == nil {
		return e.Outcome.String()
	}

	return fmt.Sprintf("%s: %v", e.Outcome, e.Err)
}

func (e *OutcomeError) Unwrap() error { return e.Err }

type operation func(s *auth.Session, ctx context.Context, req auth.Request) (auth.Outcome, error)

var (
	request auth.Request

	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Check the password of a user",
		RunE:  run((*auth.Session).Authenticate),
	}

	acctCmd = &cobra.Command{
		Use:   "acct",
		Short: "Check whether the account or its password expired",
		RunE:  run((*auth.Session).AcctMgmt),
	}

	passwdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of a user",
		RunE:  run((*auth.Session).ChangePassword),
	}

	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Record session start and end",
	}

	openSessionCmd = &cobra.Command{
		Use:   "open",
		Short: "Record the start of a session",
		RunE:  run((*auth.Session).OpenSession),
	}

	closeSessionCmd = &cobra.Command{
		Use:   "close",
		Short: "Record the end of a session",
		RunE:  run((*auth.Session).CloseSession),
	}
)

// newSession returns a configured session for the loaded configuration.
func newSession() (*auth.Session, error) {
	s := auth.NewSession(auth.Config{
		Open:             auth.DriverOpener(cfg.Auth.Driver, storeOptions()...),
		Prompter:         newTerminalPrompter(os.Stdin, os.Stderr),
		AllowNullAuthTok: cfg.Auth.AllowNullPassword,
		QueryTimeout:     cfg.Auth.QueryTimeout,
	})

	if err := s.Configure(append(cfg.SessionArgs(), optionArgs...)); err != nil {
		_ = s.Close()

		return nil, err //nolint:wrapcheck
	}

	return s, nil
}

// storeOptions traces statements when Log.QueryLog is set.
func storeOptions() []rowstore.Option {
	if !cfg.Log.QueryLog {
		return nil
	}

	return []rowstore.Option{rowstore.WithLogger(gormlog.New())}
}

func run(op operation) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := newSession()
		if err != nil {
			return &OutcomeError{Outcome: auth.OutcomeServiceErr, Err: err}
		}

		defer func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close session")
			}
		}()

		req := request
		req.AuthTok = tokenFromEnv(EnvAuthTok)
		req.OldAuthTok = tokenFromEnv(EnvOldAuthTok)

		outcome, err := op(s, cmd.Context(), req)

		log.Info().Str("command", cmd.CommandPath()).Str("user", req.User).
			Str("outcome", outcome.String()).Msg("operation finished")

		if outcome != auth.OutcomeSuccess {
			return &OutcomeError{Outcome: outcome, Err: err}
		}

		return nil
	}
}

func tokenFromEnv(name string) []byte {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	return []byte(value)
}
