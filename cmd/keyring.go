package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newKeyringCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Escrow vault keys in the OS keyring",
		Long: `Keeps a copy of a vault key in the operating system keyring so that a
lost or damaged NAME.vlt.key can be restored.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <name>",
			Short: "Copy the vault key into the keyring",
			Args:  exactArgs(1, "keyring save <name>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withVlt(func(v *core.Vlt) error {
					if err := v.KeyringSave(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Key saved to keyring")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "restore <name>",
			Short: "Rewrite the key file from the keyring",
			Args:  exactArgs(1, "keyring restore <name>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withVlt(func(v *core.Vlt) error {
					if err := v.KeyringRestore(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Key restored from keyring")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Remove the key from the keyring",
			Args:  exactArgs(1, "keyring delete <name>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withVlt(func(v *core.Vlt) error {
					err := v.KeyringDelete(cmd.Context(), args[0])
					if errors.Is(err, core.ErrNotEscrowed) {
						fmt.Fprintln(cmd.OutOrStdout(), "No key stored in keyring")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Key removed from keyring")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status <name>",
			Short: "Show whether the key is escrowed",
			Args:  exactArgs(1, "keyring status <name>"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withVlt(func(v *core.Vlt) error {
					ok, err := v.KeyringStatus(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Key: stored in keyring")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "Key: not stored")
					}
					return nil
				})
			},
		},
	)
	return cmd
}
