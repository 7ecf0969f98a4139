package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Belphemur/MovieLinks/internal/parser"
	"github.com/Belphemur/MovieLinks/internal/verify"
)

func newVerifyCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every row of the links file is stored unchanged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := openSource(ctx, cc.cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer src.Close()

			st, err := openStore(ctx, cc.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := verify.Verify(ctx, st, parser.NewLinkParser().Stream(ctx, src))
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderVerifyReport(report))
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d missing and %d mismatched links in %s", len(report.Missing), len(report.Mismatched), st.Table())
			}
			return nil
		},
	}
}
