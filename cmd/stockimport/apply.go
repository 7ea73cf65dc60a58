package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockimport/internal/apply"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/logging"
	"github.com/JonMunkholm/stockimport/internal/metrics"
)

type applyOptions struct {
	sourceOptions
	databaseURL string
	commit      bool
}

func newApplyCmd(a *app) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run a workbook's batch against a database (dry run unless --apply)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.sourceOptions.apply(a.cfg)
			if opts.databaseURL != "" {
				a.cfg.Database.URL = opts.databaseURL
			}
			return a.runApply(cmd.Context(), cmd.OutOrStdout(), opts.workbook, opts.commit)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Target database (default: DATABASE_URL)")
	cmd.Flags().BoolVar(&opts.commit, "apply", false, "Commit the batch (default is dry-run)")
	return cmd
}

func (a *app) runApply(ctx context.Context, out io.Writer, location string, commit bool) error {
	rec := metrics.New()
	defer a.exportMetrics(ctx, rec)

	res, err := a.generate(ctx, location, rec)
	if err != nil {
		return err
	}
	ctx = logging.WithRunID(ctx, res.Batch.RunID)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Database.ApplyTimeout)
	defer cancel()

	dialect, err := core.DialectByName(res.Batch.Dialect)
	if err != nil {
		return withCode(exitUsage, err)
	}

	applier, closeDB, err := apply.Open(ctx, dialect, a.cfg.Database, apply.Options{DryRun: !commit})
	if err != nil {
		return withCode(exitDB, err)
	}
	defer closeDB()

	report, err := applier.Apply(ctx, res.Batch)
	rec.ObserveApply(report, !commit, err)
	if err != nil {
		return withCode(exitDB, err)
	}

	logging.FromContext(ctx).Info("batch applied",
		"dry_run", report.DryRun,
		"statements", report.Statements,
		"inserted", report.Inserted(),
		"duration", report.Duration,
	)
	if report.DryRun {
		slog.Info("dry run: transaction rolled back, pass --apply to commit")
	}
	return printReport(out, report)
}

// printReport writes the verification results as aligned tables.
func printReport(w io.Writer, r *apply.Report) error {
	mode := "committed"
	if r.DryRun {
		mode = "dry run (rolled back)"
	}
	fmt.Fprintf(w, "Run %s: %d statements, %d rows inserted, %s\n\n", r.RunID, r.Statements, r.Inserted(), mode)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tINSERTED")
	for _, e := range core.Entities {
		fmt.Fprintf(tw, "%s\t%d\n", e, r.Affected[e])
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TABLE\tROWS")
	for _, c := range r.Counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Entity, c.Count)
	}

	if len(r.MultiVendor) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CODE\tNAME\tVENDORS\tPRIORITY ORDER")
		for _, m := range r.MultiVendor {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", m.Code, m.Name, m.VendorCount, m.Vendors)
		}
	}
	return tw.Flush()
}
