package commands

import (
	"fmt"

	"github.com/de-tools/pos-atlas/pkg/adapters"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/de-tools/pos-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	file     string
	view     string
	item     string
	engine   string
	cfgPath  string
	envs     EnvFactory
	reporter *export.Reporter
}

func NewReportCmd(envs EnvFactory, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{envs: envs, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a dashboard view for a POS export",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.file, "file", "", "Path or s3:// URI of the POS export")
	cmd.Flags().StringVar(&rc.view, "view", string(domain.ViewOverview),
		"View to render (overview, hourly, product-ranking, demographics, co-occurrence)")
	cmd.Flags().StringVar(&rc.item, "item", "", "Target item for the co-occurrence view")
	cmd.Flags().StringVar(&rc.engine, "engine", "", "Analytics engine (memory or duckdb)")
	cmd.Flags().StringVarP(&rc.cfgPath, "config", "c", "", "Path to a YAML config file")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	view, err := domain.ParseView(rc.view)
	if err != nil {
		return err
	}

	env, err := rc.envs(ctx, EnvOptions{ConfigPath: rc.cfgPath, Engine: rc.engine})
	if err != nil {
		return err
	}
	defer env.Close()

	ds, err := loadDataset(ctx, env, rc.file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", rc.file, err)
	}

	result, err := env.Dashboard.Render(ctx, ds, domain.ViewRequest{View: view, Item: rc.item})
	if err != nil {
		return fmt.Errorf("failed to render %s view: %w", view, err)
	}

	return rc.reporter.Handle(adapters.MapViewToReport(ds, result))
}
