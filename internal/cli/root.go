// Package cli implements the agenda command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/paths"
	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// session is the state shared by the commands of one invocation.
type session struct {
	flags    rootFlags
	cfg      *viper.Viper
	registry *prometheus.Registry
	log      *zap.Logger
}

// NewRootCmd creates the top-level "agenda" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	s := &session{registry: prometheus.NewRegistry(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "agenda",
		Short: "Offline task, project and note manager",
		Long: `agenda keeps categories, projects, tasks and notes in a local SQLite
database, mirrored to a plain JSONL store that is used whenever SQLite
cannot be opened.`,
		Version:       agenda.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load()
		},
	}

	root.PersistentFlags().StringVar(&s.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/agenda)")
	root.PersistentFlags().StringVar(&s.flags.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/agenda)")
	root.PersistentFlags().BoolVar(&s.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		s.newInitCmd(),
		s.newCategoryCmd(),
		s.newProjectCmd(),
		s.newTaskCmd(),
		s.newNoteCmd(),
		s.newSettingsCmd(),
		s.newSyncCmd(),
		s.newResetCmd(),
		s.newStatsCmd(),
	)
	return root
}

// Execute runs the root command with args and returns the process exit
// code. Errors are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	// A .env file in the working directory may set AGENDA_* variables.
	_ = godotenv.Load()

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps expected outcomes to exitUserError and everything else to
// exitSysError.
func exitCode(err error) int {
	for _, userErr := range []error{
		types.ErrNotFound,
		types.ErrReferentialConflict,
		types.ErrValidation,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrBackendEmpty,
		types.ErrBackendUnknown,
		errUsage,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}

// errUsage marks invalid command-line input.
var errUsage = errors.New("invalid usage")

// load reads the configuration and builds the logger.
func (s *session) load() error {
	configDir, err := paths.ResolveConfigDir(s.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	s.cfg = cfg

	log, err := logging.New(logging.Config{
		Level:  cfg.GetString(cfgKeyLogLevel),
		Format: cfg.GetString(cfgKeyLogFormat),
		Output: "stderr",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	s.log = log
	return nil
}

// options returns the agenda options for this invocation.
func (s *session) options() (agenda.Options, error) {
	dataDir, err := paths.ResolveDataDir(s.flags.dataDir, s.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return agenda.Options{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return agenda.Options{
		DataDir:    dataDir,
		Backend:    s.cfg.GetString(cfgKeyBackend),
		Logger:     s.log,
		Registerer: s.registry,
		SkipSeed:   !s.cfg.GetBool(cfgKeySeed),
	}, nil
}

// withApp opens the agenda, runs fn and closes it again.
func (s *session) withApp(fn func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		opts, err := s.options()
		if err != nil {
			return err
		}
		app, err := agenda.Open(ctx, opts)
		if err != nil {
			return fmt.Errorf("open agenda: %w", err)
		}
		runErr := fn(ctx, cmd, app, args)
		closeErr := app.Close()
		_ = s.log.Sync()
		if runErr != nil {
			return runErr
		}
		return closeErr
	}
}

// Main is the entry point used by cmd/agenda.
func Main() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}
