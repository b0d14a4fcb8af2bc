package terminal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/pos-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/pos-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/pos-atlas/pkg/services/analytics"
	"github.com/de-tools/pos-atlas/pkg/services/config"
	"github.com/de-tools/pos-atlas/pkg/services/dashboard"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	"github.com/de-tools/pos-atlas/pkg/store/source"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	envs     commands.EnvFactory
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Envs   commands.EnvFactory
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Envs == nil {
		opts.Envs = NewEnv
	}

	cli := &CLI{
		envs:     opts.Envs,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pos-atlas",
		Short:         "POS transaction analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewReportCmd(cli.envs, cli.reporter))
	cmd.AddCommand(commands.NewItemsCmd(cli.envs))

	return cmd
}

// NewEnv wires the dashboard service from configuration.
func NewEnv(ctx context.Context, opts commands.EnvOptions) (*commands.Env, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Engine != "" {
		cfg.Analytics.Engine = opts.Engine
	}

	kind, err := analytics.ParseEngineKind(cfg.Analytics.Engine)
	if err != nil {
		return nil, err
	}
	labels, err := cfg.LabelSet()
	if err != nil {
		return nil, err
	}

	engine, closeEngine, err := analytics.NewEngine(kind, duckdb.Settings{
		DbPath:  cfg.Analytics.DuckDBPath,
		Threads: cfg.Analytics.DuckDBThreads,
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("engine", string(kind)).Msg("analytics engine ready")

	svc := dashboard.NewService(engine, dashboard.Options{
		Labels:          labels,
		Comma:           cfg.Comma(),
		PreviewRows:     cfg.Analytics.PreviewRows,
		TopProducts:     cfg.Analytics.TopProducts,
		TopCategories:   cfg.Analytics.TopCategories,
		TopCooccurrence: cfg.Analytics.TopCooccurrence,
	})
	opener := source.NewOpener(source.AWSSettings{
		Profile: cfg.AWS.Profile,
		Region:  cfg.AWS.Region,
	})

	return &commands.Env{
		Dashboard: svc,
		Open:      opener.Open,
		Close: func() error {
			if err := closeEngine(); err != nil {
				return fmt.Errorf("failed to close analytics engine: %w", err)
			}
			return nil
		},
	}, nil
}
