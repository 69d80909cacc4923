package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <name>",
		Short: "Print a whole vault, values included",
		Args:  exactArgs(1, "dump <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				vt, err := v.Dump(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Vault: %s (%d entries)\n", vt.Name, vt.Len())
				for _, key := range vt.Keys() {
					val, _ := vt.Get(key)
					fmt.Fprintf(out, "  %s = %s\n", key, val)
				}
				return nil
			})
		},
	}
}
