package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of rows in the destination table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), cc.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
