package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/logging"
	"github.com/JonMunkholm/stockimport/internal/metrics"
	"github.com/JonMunkholm/stockimport/internal/script"
	"github.com/JonMunkholm/stockimport/internal/workbook"
)

// sourceOptions are the flags shared by every command that reads a
// workbook.
type sourceOptions struct {
	workbook    string
	dialect     string
	layout      string
	metricsFile string
	pushgateway string
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.workbook, "workbook", "w", "", "Workbook path, http(s):// or s3:// URL (required)")
	cmd.Flags().StringVar(&o.dialect, "dialect", "", "SQL dialect: postgres or sqlite (default: GENERATE_DIALECT)")
	cmd.Flags().StringVar(&o.layout, "layout", "", "YAML file overriding sheet and column names (default: GENERATE_LAYOUT_FILE)")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics for the node-exporter textfile collector")
	cmd.Flags().StringVar(&o.pushgateway, "pushgateway", "", "Push run metrics to this Pushgateway URL")
	_ = cmd.MarkFlagRequired("workbook")
}

// apply copies the set flags over the env configuration.
func (o *sourceOptions) apply(cfg *config.Config) {
	if o.dialect != "" {
		cfg.Generate.Dialect = o.dialect
	}
	if o.layout != "" {
		cfg.Generate.LayoutFile = o.layout
	}
	if o.metricsFile != "" {
		cfg.Metrics.TextfilePath = o.metricsFile
	}
	if o.pushgateway != "" {
		cfg.Metrics.PushgatewayURL = o.pushgateway
	}
}

type generateOptions struct {
	sourceOptions
	out string
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the SQL import script for a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apply(a.cfg)
			if opts.out != "" {
				a.cfg.Generate.OutputPath = opts.out
			}
			return a.runGenerate(cmd.Context(), opts.workbook)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output script path (default: GENERATE_OUTPUT)")
	return cmd
}

func (a *app) runGenerate(ctx context.Context, location string) error {
	rec := metrics.New()
	defer a.exportMetrics(ctx, rec)

	res, err := a.generate(ctx, location, rec)
	if err != nil {
		return err
	}

	if err := script.WriteFile(a.cfg.Generate.OutputPath, res.Batch); err != nil {
		return withCode(exitFailure, err)
	}

	logging.WithFields(logging.WithRunID(ctx, res.Batch.RunID)).Info("script written",
		"path", a.cfg.Generate.OutputPath,
		"statements", len(res.Batch.Statements),
	)
	return nil
}

// generate loads the workbook and builds its batch, logging a summary and
// every warning.
func (a *app) generate(ctx context.Context, location string, rec *metrics.Recorder) (*core.Result, error) {
	svc, err := core.NewService(a.cfg.Generate.Dialect)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	layout := config.DefaultLayout()
	if a.cfg.Generate.LayoutFile != "" {
		if layout, err = config.LoadLayout(a.cfg.Generate.LayoutFile); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	wb, err := workbook.Load(ctx, location, layout, workbook.OptionsFromConfig(a.cfg.Generate))
	if err != nil {
		return nil, withCode(exitValidation, err)
	}
	rec.ObserveWorkbook(wb)
	slog.Info("workbook read",
		"source", wb.Source,
		"raw_materials", len(wb.RawMaterials),
		"sub_assemblies", len(wb.SubAssemblies),
		"bom_rows", len(wb.BOM),
	)

	start := time.Now()
	res, err := svc.Generate(wb)
	rec.ObserveGeneration(res, time.Since(start), err)
	if err != nil {
		return nil, withCode(exitValidation, err)
	}

	log := logging.WithFields(logging.WithRunID(ctx, res.Batch.RunID), "dialect", res.Batch.Dialect)
	for _, d := range res.Plan.Diagnostics {
		log.Warn(d.Message, "kind", d.Kind, "sheet", d.Sheet, "line", d.Line)
	}

	summary := res.Plan.Summary()
	log.Info("batch generated",
		"vendors", summary.Vendors,
		"raw_materials", summary.RawMaterials,
		"sub_assemblies", summary.SubAssemblies,
		"links", summary.Links,
		"boms", summary.BOMs,
		"bom_lines", summary.BOMLines,
		"stock_entries", summary.StockEntries,
		"warnings", summary.Warnings,
	)
	return res, nil
}

// exportMetrics writes or pushes the run metrics when configured. Export
// failures are logged, never returned.
func (a *app) exportMetrics(ctx context.Context, rec *metrics.Recorder) {
	m := a.cfg.Metrics
	if m.TextfilePath != "" {
		if err := rec.WriteTextfile(m.TextfilePath); err != nil {
			slog.Warn("metrics export failed", "error", err)
		}
	}
	if m.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := rec.Push(pushCtx, m.PushgatewayURL, m.Job); err != nil {
			slog.Warn("metrics export failed", "error", err)
		}
	}
}
