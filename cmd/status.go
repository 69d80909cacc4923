package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/core"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the vault root, its vaults and key file exposure",
		Long: `Shows where vaults are stored and which exist. Does not read any key.

With the file backend inside a git repository, also checks that no
NAME.vlt.key is tracked by git or missing from .gitignore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVlt(func(v *core.Vlt) error {
				info, err := v.Status(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Root:    %s\n", info.Root)
				fmt.Fprintf(out, "Backend: %s\n", info.Backend)
				if !info.Modified.IsZero() {
					fmt.Fprintf(out, "Last modified: %s\n", info.Modified.Format(time.RFC3339))
				}

				fmt.Fprintln(out, "\nVaults:")
				if len(info.Vaults) == 0 {
					fmt.Fprintln(out, "  (none)")
				}
				for _, name := range info.Vaults {
					fmt.Fprintf(out, "  %s\n", name)
				}

				if info.Git != nil {
					if s := info.Git.Format(); s != "" {
						fmt.Fprintf(out, "\n%s", s)
					}
				}
				return nil
			})
		},
	}
}
