package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newNewCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty vault",
		Long: `Creates NAME.vlt and NAME.vlt.key in the vault root.

Refuses to replace an existing vault unless --force is given. Forcing
generates a new key, so the previous contents cannot be recovered.`,
		Args: exactArgs(1, "new <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				if err := v.New(cmd.Context(), args[0], force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created vault %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing vault")
	return cmd
}
