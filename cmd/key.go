package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newKeyCmd(a *app) *cobra.Command {
	var noClipboard bool

	cmd := &cobra.Command{
		Use:     "key <name> <key>",
		Aliases: []string{"get"},
		Short:   "Print the value of an entry and copy it to the clipboard",
		Long: `Prints the value stored under KEY in vault NAME.

On a terminal the value is also copied to the clipboard, unless
--no-clipboard is given or clipboard = false is set in the config.
When stdout is not a terminal only the bare value is printed.`,
		Args: exactArgs(2, "key <name> <key>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				val, err := v.Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !isOutputTerminal() {
					fmt.Fprintln(out, val)
					return nil
				}

				fmt.Fprintf(out, "Key %s has value: %s\n", args[1], val)
				if noClipboard || !a.cfg.Clipboard {
					return nil
				}
				if !clipboardAvailable() {
					a.log.Warnf("no clipboard utility found")
					return nil
				}
				if err := copyToClipboard(val); err != nil {
					a.log.Warnf("failed to copy to clipboard: %v", err)
					return nil
				}
				fmt.Fprintln(out, "The value is now in the clipboard.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "do not copy the value")
	return cmd
}
