package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newDeleteKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-key <name> <key>",
		Short: "Remove an entry",
		Args:  exactArgs(2, "delete-key <name> <key>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				if err := v.DeleteKey(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}
