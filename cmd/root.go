package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/vlt/internal/audit"
	"github.com/illarion/vlt/internal/config"
	"github.com/illarion/vlt/internal/core"
	"github.com/illarion/vlt/internal/logging"
)

// app holds the state shared by all commands of one invocation
type app struct {
	rootDir    string
	backend    string
	configPath string
	envFile    string
	verbose    bool
	debug      bool

	cfg config.Config
	log logging.Logger
}

// NewRootCmd builds the vlt command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vlt",
		Short: "vlt - local encrypted key/value vaults",
		Long: `vlt keeps named vaults of key/value secrets on local disk.

Each vault NAME is stored as NAME.vlt, sealed with XChaCha20-Poly1305, next to
its 32-byte key in NAME.vlt.key. Keep the key file private; anyone holding
both files can read the vault.

Examples:
  vlt new work
  vlt add work db_password s3cr3t
  vlt key work db_password
  vlt list work`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.rootDir, "root", "", "directory holding the vaults (default from config, then \".\")")
	flags.StringVar(&a.backend, "backend", "", "storage backend: file or bolt")
	flags.StringVar(&a.configPath, "config", "", "config file (default $VLT_CONFIG or the user config dir)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file read into the environment before config")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug output")

	root.AddCommand(
		newNewCmd(a),
		newListCmd(a),
		newDumpCmd(a),
		newAddCmd(a),
		newKeyCmd(a),
		newDeleteKeyCmd(a),
		newDeleteVaultCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newDiffCmd(a),
		newCompactCmd(a),
		newStatusCmd(a),
		newKeyringCmd(a),
		newConfigCmd(a),
		newLogCmd(a),
	)
	return root
}

// setup loads configuration and applies flag overrides
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.log = logging.Logger{Verbose: a.verbose, Debug: a.debug, W: cmd.ErrOrStderr()}

	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	path := a.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			a.log.Warnf("%v, using defaults", err)
		}
		path = p
	}
	a.log.Debugf("config file: %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.rootDir != "" {
		cfg.Root = a.rootDir
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.configPath = path

	a.log.Debugf("root=%s backend=%s", cfg.Root, cfg.Backend)
	return nil
}

// open opens the configured vault root
func (a *app) open() (*core.Vlt, error) {
	opts := core.Options{
		Root:     a.cfg.Root,
		Backend:  a.cfg.Backend,
		BoltFile: a.cfg.BoltFile,
		Logger:   a.log,
	}
	if a.cfg.Audit {
		opts.Audit = audit.New(a.cfg.AuditPath())
	}
	return core.Open(opts)
}

// withVlt opens the root, runs fn and closes the root
func (a *app) withVlt(fn func(v *core.Vlt) error) error {
	v, err := a.open()
	if err != nil {
		return err
	}
	defer v.Close()
	return fn(v)
}

// Execute runs vlt with the process arguments
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		HandleError(err)
	}
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s requires %d argument(s)\nUsage: vlt %s", cmd.Name(), n, usage)
		}
		return nil
	}
}
