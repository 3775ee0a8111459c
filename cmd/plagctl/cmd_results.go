package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"plagdesk/internal/application/listutil"
	"plagdesk/internal/application/orchestrators"
	"plagdesk/internal/application/projections"
	"plagdesk/internal/domain/result"
)

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show account analytics and the latest results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			d, err := projections.QueryGetDashboard(cmd.Context(), projections.GetDashboardDeps{
				Analytics: c.app.Gateway,
				History:   c.app.Gateway,
			})
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDashboard(d))
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past checks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			if perPage == 0 {
				perPage = c.app.Config.HistoryPerPage
			}
			h, err := projections.QueryGetHistory(cmd.Context(), projections.GetHistoryQuery{Page: page, PerPage: perPage},
				projections.GetHistoryDeps{Gateway: c.app.Gateway})
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderHistory(h))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, fmt.Sprintf("rows per page (one of %v)", listutil.PerPageOptions))
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			d, err := projections.QueryGetResult(cmd.Context(), projections.GetResultQuery{ID: result.ID(args[0])},
				projections.GetResultDeps{Gateway: c.app.Gateway})
			if errors.Is(err, projections.ErrResultNotFound) {
				return fmt.Errorf("result %s not found", args[0])
			}
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderResult(d))
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one stored result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			err := orchestrators.ExecuteDeleteResult(cmd.Context(), orchestrators.DeleteResultInput{ID: result.ID(args[0])},
				orchestrators.DeleteResultDeps{Gateway: c.app.Gateway})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Result deleted."))
			return nil
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Download the PDF report for a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			path, err := orchestrators.ExecuteSaveReport(cmd.Context(), orchestrators.SaveReportInput{
				ID:  result.ID(args[0]),
				Dir: dir,
			}, orchestrators.DownloadReportDeps{Gateway: c.app.Gateway})
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved "+path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", "", "directory to write the PDF into (default: current)")
	return cmd
}
