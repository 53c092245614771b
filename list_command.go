package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"talk-explorer/models"
	"talk-explorer/services"
	"talk-explorer/views"
)

// errLoadFailed is returned after the failure has been rendered.
var errLoadFailed = errors.New("catalog load failed")

func newListCommand(ctx *commandContext) *cobra.Command {
	var baseURL string
	var selectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch the catalog once and print the video list",
		Long: "Fetch the catalog from a running server (or any host serving " + services.CatalogPath + ")\n" +
			"and print it as a table. With --select, the chosen video's details follow the table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				cfg.CatalogBaseURL = baseURL
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg.Level())

			loader, err := services.NewCatalogLoader(cfg.CatalogBaseURL, cfg.LoadTimeoutDuration(), logger)
			if err != nil {
				return err
			}

			var sel *int64
			if cmd.Flags().Changed("select") {
				sel = &selectID
			}
			style := table.StyleDefault
			if isTerminal(os.Stdout) {
				style = table.StyleRounded
			}
			return runList(cmd.Context(), loader, sel, cmd.OutOrStdout(), style, logger)
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Base URL serving the catalog (overrides catalog_base_url)")
	cmd.Flags().Int64Var(&selectID, "select", 0, "Show details for the video with this id")
	return cmd
}

// runList mounts a coordinator, waits for the load to settle, optionally
// activates a row and renders the page as a table.
func runList(ctx context.Context, loader services.Loader, selectID *int64, out io.Writer, style table.Style, logger *slog.Logger) error {
	coord := services.NewCoordinator(loader, logger)
	defer coord.Close()
	coord.Mount()

	waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	state, err := coord.AwaitSettled(waitCtx)
	if err != nil {
		return err
	}

	if selectID != nil && state.Status.Phase == models.PhaseLoaded {
		if err := coord.Select(*selectID); err != nil {
			return fmt.Errorf("select %d: %w", *selectID, err)
		}
	}

	page, err := coord.Render()
	if err != nil {
		return err
	}
	if err := views.RenderTable(out, page, style); err != nil {
		return err
	}
	if page.Failed() {
		return errLoadFailed
	}
	return nil
}
