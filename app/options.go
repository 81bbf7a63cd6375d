package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

func init() { //nolint: gochecknoinits
	optionsCmd.Flags().BoolVar(&showValues, "values", false,
		"show the values after applying the configuration, secrets masked")
	optionsCmd.Flags().BoolVar(&fileNames, "file", false, "list the configuration file names instead")
	rootCmd.AddCommand(optionsCmd)
}

var (
	showValues bool
	fileNames  bool

	optionsCmd = &cobra.Command{
		Use:   "options",
		Short: "List the option names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := options.ArgRegistry
			if fileNames {
				registry = options.FileRegistry
			}

			var c *options.Context

			if showValues {
				s, err := newSession()
				if err != nil {
					return err
				}

				defer s.Close()

				c = s.Options()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd

			for _, d := range registry.Descriptors() {
				if c == nil {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Kind)

					continue
				}

				value, err := registry.Get(c, d.Name)
				if err != nil {
					return err //nolint:wrapcheck
				}

				if d.Sensitive && value != "" {
					value = "********"
				}

				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Kind, value)
			}

			return w.Flush() //nolint:wrapcheck
		},
	}
)
