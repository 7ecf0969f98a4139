package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the destination table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), cc.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.EnsureTable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %s is ready (%s)\n", st.Table(), st.Driver())
			return nil
		},
	}
}
