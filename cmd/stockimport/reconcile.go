package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockimport/internal/reconcile"
)

type reconcileOptions struct {
	baseURL string
	token   string
	codes   []string
	timeout time.Duration
}

func newReconcileCmd(a *app) *cobra.Command {
	var opts reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare imported stock with a running inventory API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Reconcile
			if opts.baseURL != "" {
				cfg.BaseURL = opts.baseURL
			}
			if opts.token != "" {
				cfg.Token = opts.token
			}
			if len(opts.codes) > 0 {
				cfg.Codes = opts.codes
			}
			if opts.timeout > 0 {
				cfg.Timeout = opts.timeout
			}
			if len(cfg.Codes) == 0 {
				cfg.Codes = reconcile.DefaultCodes
			}
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), reconcile.NewClient(cfg.BaseURL, cfg.Token, cfg.Timeout), cfg.Codes)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Inventory API root (default: RECONCILE_BASE_URL)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token (default: RECONCILE_TOKEN)")
	cmd.Flags().StringArrayVar(&opts.codes, "code", nil, "Item code to check (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (default: RECONCILE_TIMEOUT)")
	return cmd
}

func runReconcile(ctx context.Context, out io.Writer, client *reconcile.Client, codes []string) error {
	snap, err := client.Fetch(ctx)
	if err != nil {
		var fe *reconcile.FetchError
		if errors.As(err, &fe) && fe.Path == reconcile.StockPath {
			return withCode(exitStock, err)
		}
		return withCode(exitItems, err)
	}
	slog.Debug("inventory fetched", "items", len(snap.Items), "stock_rows", len(snap.Stock))

	return reconcile.Print(out, reconcile.Build(snap, codes))
}
