package app

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// ErrHashMismatch is returned by hash --verify for a wrong password.
var ErrHashMismatch = errors.New("password does not match")

func init() { //nolint: gochecknoinits
	hashCmd.Flags().StringVar(&verifyStored, "verify", "", "check the password against this stored value")
	rootCmd.AddCommand(hashCmd)
}

var (
	verifyStored string

	hashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Print a stored value for a password in the configured scheme",
		Long: `Print a stored value for a password in the scheme selected by the crypt
option, or with --verify check a password against a stored value. The
password is read from the terminal, or one line from standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := options.New()
			defer c.Destroy()

			if _, err := options.ParseArgs(c, append(append([]string{}, cfg.Auth.Args...), optionArgs...)); err != nil {
				return err //nolint:wrapcheck
			}

			p := newTerminalPrompter(os.Stdin, os.Stderr)

			passwd, err := p.Prompt(cmd.Context(), auth.PromptPassword, false)
			if err != nil {
				return err
			}
			defer strbuf.Wipe(passwd)

			if passwd == nil {
				return auth.ErrNoAuthTok
			}

			v := credential.NewVerifier(c.Params())

			if verifyStored != "" {
				return verify(v, c.CryptType, passwd)
			}

			again, err := p.Prompt(cmd.Context(), auth.PromptRetypeNewPassword, false)
			if err != nil {
				return err
			}
			defer strbuf.Wipe(again)

			if again != nil && !bytes.Equal(passwd, again) {
				return auth.ErrAuthTokMismatch
			}

			stored, err := v.Generate(c.CryptType, passwd)
			if err != nil {
				return err //nolint:wrapcheck
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), stored)

			return err //nolint:wrapcheck
		},
	}
)

func verify(v *credential.Verifier, scheme credential.Scheme, passwd []byte) error {
	result, err := v.Verify(scheme, passwd, sql.NullString{String: verifyStored, Valid: true},
		credential.NullMismatches)

	switch {
	case result == credential.Success:
		return nil
	case err != nil:
		return fmt.Errorf("%w: %w", ErrHashMismatch, err)
	default:
		return ErrHashMismatch
	}
}
