package app

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/controller/account"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

func init() { //nolint: gochecknoinits
	for _, cmd := range []*cobra.Command{userAddCmd, userStatusCmd, userDeleteCmd} {
		cmd.Flags().StringVarP(&accountName, "user", "u", "", "user name")
		_ = cmd.MarkFlagRequired("user")
	}

	userAddCmd.Flags().BoolVar(&nullPassword, "null-password", false, "leave the password NULL")
	userStatusCmd.Flags().BoolVar(&statusExpired, "expired", false, "mark the account expired")
	userStatusCmd.Flags().BoolVar(&statusAuthTokExpired, "authtok-expired", false, "mark the password expired")
	userStatusCmd.Flags().BoolVar(&statusNull, "null", false, "set a NULL status, read as expired")

	userCmd.AddCommand(userAddCmd, userListCmd, userStatusCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}

var (
	accountName          string
	nullPassword         bool
	statusExpired        bool
	statusAuthTokExpired bool
	statusNull           bool

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts in the default users table",
	}

	userAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Add an account, the password is encoded in the configured scheme",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(s *auth.Session, store *rowstore.Store) error {
				var stored sql.NullString

				if !nullPassword {
					encoded, err := encodePassword(cmd, s)
					if err != nil {
						return err
					}

					stored = sql.NullString{String: encoded, Valid: true}
				}

				user, err := account.Create(store.DB(), accountName, stored)
				if err != nil {
					return err //nolint:wrapcheck
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %d)\n", user.Name, user.ID)

				return err //nolint:wrapcheck
			})
		},
	}

	userListCmd = &cobra.Command{
		Use:   "list",
		Short: "List accounts and their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(_ *auth.Session, store *rowstore.Store) error {
				users, err := account.GetAll(store.DB())
				if err != nil {
					return err //nolint:wrapcheck
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd

				for _, u := range users {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", u.Name, describeStatus(u))
				}

				return w.Flush() //nolint:wrapcheck
			})
		},
	}

	userStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Set the status bits of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := sql.NullInt64{Valid: !statusNull}

			if statusExpired {
				status.Int64 |= models.StatusExpired
			}

			if statusAuthTokExpired {
				status.Int64 |= models.StatusAuthTokExpired
			}

			return withStore(func(_ *auth.Session, store *rowstore.Store) error {
				user, err := account.SetStatus(store.DB(), accountName, status)
				if err != nil {
					return err //nolint:wrapcheck
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.Name, describeStatus(*user))

				return err //nolint:wrapcheck
			})
		},
	}

	userDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete an account",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(_ *auth.Session, store *rowstore.Store) error {
				return account.DeleteByName(store.DB(), accountName) //nolint:wrapcheck
			})
		},
	}
)

// withStore opens the configured database for table maintenance.
func withStore(fn func(s *auth.Session, store *rowstore.Store) error) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	store, err := rowstore.Open(cfg.Auth.Driver, s.Options(), storeOptions()...)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer store.Close()

	return fn(s, store)
}

func encodePassword(cmd *cobra.Command, s *auth.Session) (string, error) {
	p := newTerminalPrompter(os.Stdin, os.Stderr)

	first, err := p.Prompt(cmd.Context(), auth.PromptNewPassword, false)
	if err != nil {
		return "", err
	}
	defer strbuf.Wipe(first)

	second, err := p.Prompt(cmd.Context(), auth.PromptRetypeNewPassword, false)
	if err != nil {
		return "", err
	}
	defer strbuf.Wipe(second)

	if first == nil {
		return "", auth.ErrNoAuthTok
	}

	if second != nil && !bytes.Equal(first, second) {
		return "", auth.ErrAuthTokMismatch
	}

	c := s.Options()

	return credential.NewVerifier(c.Params()).Generate(c.CryptType, first) //nolint:wrapcheck
}

func describeStatus(u models.User) string {
	if !u.Status.Valid {
		return "expired (null status)"
	}

	switch {
	case u.Status.Int64&models.StatusExpired != 0:
		return "expired"
	case u.Status.Int64&models.StatusAuthTokExpired != 0 && !u.Password.Valid:
		return "new password required"
	case u.Status.Int64&models.StatusAuthTokExpired != 0:
		return "password expired"
	case !u.Password.Valid:
		return "active, no password"
	default:
		return "active"
	}
}
