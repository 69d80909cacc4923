package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list [name]",
		Aliases: []string{"ls"},
		Short:   "List vaults, or the keys of one vault",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				var (
					items []string
					err   error
				)
				if len(args) == 0 {
					items, err = v.List(cmd.Context())
				} else {
					items, err = v.ListKeys(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}

				for _, item := range items {
					fmt.Fprintln(cmd.OutOrStdout(), item)
				}
				if len(items) == 0 {
					a.log.Infof("nothing to list")
				}
				return nil
			})
		},
	}
}
