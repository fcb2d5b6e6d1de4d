package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/splice/internal/artifact"
	"github.com/vango-dev/splice/internal/config"
	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/engine"
	"github.com/vango-dev/splice/pkg/template"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	templates  string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "splice",
		Short: "Template reconciliation and slot projection",
		Long: `splice resolves component instance trees against a table of
compiled templates, then projects slot content into place.

Templates are loaded from a table artifact (.json, .cbor or .msgpack,
optionally .zst or .lz4 compressed) on disk or in S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: nearest splice.json or splice.yaml)")
	pf.StringVarP(&flags.templates, "templates", "t", "", "Template table, overrides the config")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level, overrides the config")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		inspectCmd(flags),
		convertCmd(flags),
		resolveCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config named by --config, or the nearest one. A
// missing config is not an error when --templates is given.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if errors.HasCode(err, "E122") && f.templates != "" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if f.templates != "" {
		cfg.Templates = f.templates
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog handler named by the config.
func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// objectStore returns an S3 client when source is remote, nil otherwise.
func objectStore(cfg *config.Config, source string) artifact.ObjectStore {
	if !artifact.IsRemote(source) {
		return nil
	}
	return artifact.NewS3Client(artifact.S3Config{
		Region:   cfg.S3.Region,
		Endpoint: cfg.S3.Endpoint,
	})
}

// loadTable loads the configured template table, honoring the codec
// override.
func loadTable(ctx context.Context, cfg *config.Config) (*template.Table, artifact.Info, error) {
	source := cfg.TemplatesPath()
	store := objectStore(cfg, source)
	if cfg.Codec == "" {
		return artifact.Load(ctx, source, store)
	}
	f, err := artifact.ParseFormat(cfg.Codec)
	if err != nil {
		return nil, artifact.Info{}, err
	}
	return artifact.LoadAs(ctx, source, f, store)
}

// loadRegistry builds a registry from the configured table. The config
// root wins over the root recorded in the table.
func loadRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*template.Registry, artifact.Info, error) {
	table, info, err := loadTable(ctx, cfg)
	if err != nil {
		return nil, info, err
	}
	reg := template.NewRegistry(cfg.Root)
	if err := reg.LoadTable(table); err != nil {
		return nil, info, fmt.Errorf("%s: %w", info.Source, err)
	}
	logger.Info("template table loaded",
		"source", info.Source,
		"format", info.Format.String(),
		"digest", info.Digest,
		"templates", info.Templates,
		"root", reg.Root())
	return reg, info, nil
}

// newEngine wires an engine from the config. reg may be nil to skip
// metric registration.
func newEngine(cfg *config.Config, registry *template.Registry, logger *slog.Logger, reg prometheus.Registerer) *engine.Engine {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithWorkers(cfg.Workers),
		engine.WithShapeCheck(cfg.Strict),
		engine.WithTracerName(cfg.Tracing.Name),
	}
	if reg != nil {
		opts = append(opts, engine.WithMetrics(engine.NewMetrics(
			engine.WithNamespace(cfg.Metrics.Namespace),
			engine.WithSubsystem(cfg.Metrics.Subsystem),
			engine.WithRegistry(reg),
		)))
	}
	return engine.New(registry, opts...)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
