package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <name> <file>",
		Short: "Import variables from a dotenv file",
		Long: `Adds every variable of a dotenv FILE to vault NAME, replacing existing
keys of the same name. Use - to read from stdin.`,
		Args: exactArgs(2, "import <name> <file>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[1], err)
				}
				defer f.Close()
				r = f
			}

			return a.withVlt(func(v *core.Vlt) error {
				n, err := v.Import(cmd.Context(), args[0], r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", n, args[0])
				return nil
			})
		},
	}
}
