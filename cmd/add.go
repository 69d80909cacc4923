package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <key> <value>",
		Short: "Add or replace an entry",
		Args:  exactArgs(3, "add <name> <key> <value>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				if err := v.Add(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[1], args[0])
				return nil
			})
		},
	}
}
