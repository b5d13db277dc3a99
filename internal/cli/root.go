// Package cli wires configuration, logging and the dispatcher into the
// turbo-gherkin-ls commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcncl/turbo-gherkin-ls/internal/config"
	"github.com/mcncl/turbo-gherkin-ls/internal/lsp"
)

var (
	// Version information - set during build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// session is everything a command needs once configuration is resolved
type session struct {
	cfg        config.Config
	logger     *zap.Logger
	dispatcher *lsp.Dispatcher
	close      func()
}

// NewRootCommand builds the command tree. Running the root without a
// subcommand starts the language server.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:          "turbo-gherkin-ls",
		Short:        "Language server for Gherkin-style test scenarios",
		Long:         `A language server for Gherkin-style test scenarios with localized keywords, step registries, variables and imports.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd, v, cfgFile)
		},
	}

	defaults := config.Defaults()
	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (YAML, JSON or TOML)")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.StringP("registry", "r", "", "registry file with keywords, steps, variables and imports")
	flags.StringSlice("import-directive", nil, "words that start an import line")
	flags.Duration("memo-ttl", defaults.Memo.TTL, "how long syntax check results are cached")

	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("registry", flags.Lookup("registry"))
	_ = v.BindPFlag("import_directives", flags.Lookup("import-directive"))
	_ = v.BindPFlag("memo.ttl", flags.Lookup("memo-ttl"))

	root.AddCommand(
		newLSPCommand(v, &cfgFile),
		newWorkerCommand(v, &cfgFile),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// setup resolves configuration, builds the logger and loads the registry.
// Logs never go to stdout, which carries the protocol.
func setup(v *viper.Viper, cfgFile string, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}

	dispatcher := lsp.NewDispatcher(
		lsp.WithLogger(logger),
		lsp.WithMemoTTL(cfg.Memo.TTL),
		lsp.WithImportDirectives(cfg.ImportDirectives),
	)

	if cfg.Registry != "" {
		if _, err := os.Stat(cfg.Registry); err != nil {
			closeLog()
			return nil, fmt.Errorf("registry: %w", err)
		}
		if err := dispatcher.LoadRegistryFile(cfg.Registry); err != nil {
			logger.Warn("registry loaded with errors",
				zap.String("path", cfg.Registry),
				zap.Error(err))
		} else {
			logger.Info("registry loaded", zap.String("path", cfg.Registry))
		}
	}

	return &session{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		close:      closeLog,
	}, nil
}

func newLogger(cfg config.Config, stderr io.Writer) (*zap.Logger, func(), error) {
	zcfg := zap.NewProductionConfig()
	encoder := zapcore.NewJSONEncoder(zcfg.EncoderConfig)

	sink := zapcore.AddSync(stderr)
	closeSink := func() {}
	if cfg.LogFile != "" {
		ws, closeFile, err := zap.Open(cfg.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sink, closeSink = ws, closeFile
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(cfg.Level())))
	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "turbo-gherkin-ls %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
