package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newCompactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Compact the bolt database to reclaim disk space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				res, err := v.Compact(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Compacted: %s -> %s\n", formatSize(res.Before), formatSize(res.After))
				return nil
			})
		},
	}
}
