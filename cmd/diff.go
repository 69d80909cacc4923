package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newDiffCmd(a *app) *cobra.Command {
	var showValues bool

	cmd := &cobra.Command{
		Use:   "diff <name-a> <name-b>",
		Short: "Compare the entries of two vaults",
		Long: `Shows a line diff of two vaults, one key=value line per entry.

Values are replaced by a short SHA-256 fingerprint so that differing
values are visible without revealing them. Use --show-values to print
the plaintext.`,
		Args: exactArgs(2, "diff <name-a> <name-b>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				diff, err := v.Diff(cmd.Context(), args[0], args[1], showValues)
				if err != nil {
					return err
				}
				if diff == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes detected")
					return nil
				}
				_, err = io.WriteString(cmd.OutOrStdout(), diff)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&showValues, "show-values", false, "print plaintext values")
	return cmd
}
