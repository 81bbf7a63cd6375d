package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the default user and log tables",
	Long: `Create the users and pam_log tables in the configured database and print
the option arguments that point the authenticator at them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(func(_ *auth.Session, store *rowstore.Store) error {
			if err := store.DB().AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}

			log.Info().Str("driver", store.Driver()).Str("host", store.HostInfo()).Msg("schema created")

			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(models.Args(), "\n"))

			return err //nolint:wrapcheck
		})
	},
}
