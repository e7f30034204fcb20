package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

var (
	documentsView  listing.View
	attributesView listing.View
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List documents in the knowledge library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		docs, err := s.Library.Documents(s.ctx)
		if err != nil {
			return MapError(fmt.Errorf("failed to load documents: %w", err))
		}
		page, err := application.DocumentsView(docs, documentsView, s.Config.PageSize)
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		for _, d := range page.Items {
			tags := "-"
			if len(d.Tags) > 0 {
				tags = strings.Join(d.Tags, ",")
			}
			fmt.Fprintf(out, "%-36s  %-40s  %-12s  %9s  %s\n",
				d.ID, truncate(d.Filename, 40), d.DocType, humanSize(d.FileSize), tags)
		}
		printPageFooter(out, page.First, page.Last, page.Matched, page.Page, page.TotalPages)
		return nil
	},
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteEntity(cmd, sdk.EntityDocument, args[0])
	},
}

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List extracted company attributes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		attrs, err := s.Library.Attributes(s.ctx)
		if err != nil {
			return MapError(fmt.Errorf("failed to load attributes: %w", err))
		}
		page, err := application.AttributesView(attrs, attributesView, s.Config.PageSize)
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		counts := application.AttributeCategoryCounts(attrs)
		fmt.Fprintf(out, "Attributes: %d total", counts[listing.FilterAll])
		for _, c := range rfp.AllCategories() {
			if n := counts[string(c)]; n > 0 {
				fmt.Fprintf(out, ", %d %s", n, c)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out)
		for _, a := range page.Items {
			fmt.Fprintf(out, "[%-10s] %s: %s\n", a.Category, a.Key, truncate(a.Value, 60))
		}
		printPageFooter(out, page.First, page.Last, page.Matched, page.Page, page.TotalPages)
		return nil
	},
}

var attributesDeleteCmd = &cobra.Command{
	Use:   "delete <attribute-id>",
	Short: "Delete an attribute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteEntity(cmd, sdk.EntityAttribute, args[0])
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show plan usage for the current month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		stats, err := s.Library.Usage(s.ctx)
		if err != nil {
			return MapError(fmt.Errorf("failed to load usage stats: %w", err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Plan:  %s (%s)\n", stats.Plan.Name, stats.Plan.Tier)
		fmt.Fprintf(out, "Month: %s\n\n", stats.Month)
		printQuota(out, "RFPs", stats.RFPs)
		printQuota(out, "Documents", stats.Docs)
		return nil
	},
}

func printQuota(out io.Writer, label string, q rfp.Quota) {
	fmt.Fprintf(out, "%-10s %d / %d", label, q.Used, q.Limit)
	if q.Exhausted() {
		fmt.Fprint(out, "  [LIMIT REACHED]")
	}
	fmt.Fprintln(out)
}

func init() {
	addViewFlags(documentsCmd, &documentsView, "Sort by newest, oldest, name or size")
	addViewFlags(attributesCmd, &attributesView, "Sort by newest, oldest, name or category")
	attributesCmd.Flags().StringVarP(&attributesView.Filter, "category", "c", "all", "Filter by category (all, technical, compliance, business, product)")

	documentsCmd.AddCommand(documentsDeleteCmd)
	attributesCmd.AddCommand(attributesDeleteCmd)
	RootCmd.AddCommand(documentsCmd, attributesCmd, usageCmd)
}
