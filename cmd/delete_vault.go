package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
	"github.com/illarion/vlt/internal/vault"
)

var errNotConfirmed = errors.New("refusing to delete without confirmation (use --force)")

func newDeleteVaultCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete-vault <name>",
		Short: "Delete a vault and its key",
		Long: `Removes NAME.vlt.key and NAME.vlt.

Asks for confirmation on a terminal. Without a terminal --force is required.`,
		Args: exactArgs(1, "delete-vault <name>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.withVlt(func(v *core.Vlt) error {
				exists, err := v.Exists(cmd.Context(), name)
				if err != nil {
					return err
				}
				// A missing or half-deleted vault has nothing left to confirm
				if exists && !force {
					if !isTerminal() {
						return errNotConfirmed
					}
					ok, err := confirm(fmt.Sprintf("Delete vault %s? This cannot be undone.", name))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}

				if err := v.DeleteVault(cmd.Context(), name); err != nil {
					if errors.Is(err, vault.ErrIO) {
						a.log.Warnf("vault %s may be partially deleted", name)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted vault %s\n", name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete without confirmation")
	return cmd
}
