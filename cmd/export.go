package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
	"github.com/illarion/vlt/internal/storage"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> [file]",
		Short: "Write a vault as a dotenv file",
		Long: `Prints the entries of vault NAME in dotenv format, sorted by key.
With FILE the output goes to that file, readable only by the owner.

Keys must be dotenv variable names (letters, digits, _ and .). Nothing is
written if any key or value cannot be exported exactly.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				text, err := v.Export(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if len(args) == 1 {
					_, err := io.WriteString(cmd.OutOrStdout(), text)
					return err
				}
				output := args[1]
				if err := os.WriteFile(output, []byte(text), storage.FilePermSecure); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], output)
				return nil
			})
		},
	}
}
