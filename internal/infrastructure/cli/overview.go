package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/tui"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
)

var overviewJSON bool

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarize projects, documents and answer confidence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		o, err := s.Library.Overview(s.ctx)
		if err != nil {
			return MapError(fmt.Errorf("failed to load overview: %w", err))
		}
		out := cmd.OutOrStdout()
		if overviewJSON {
			return printJSON(out, o)
		}

		badge := trust.Badge{Percent: o.AverageTrust, Tier: trust.Classify(o.AverageTrust, s.Config.Trust)}
		fmt.Fprintf(out, "Avg trust:  %s over %d questions\n", tui.RenderBadge(badge), o.TrustQuestions)
		fmt.Fprintf(out, "Projects:   %d (%d completed, %d processing), %d remaining this month\n",
			o.Projects, o.Completed, o.Processing, o.Usage.RFPs.Remaining)
		fmt.Fprintf(out, "Documents:  %d, %d remaining\n", o.Documents, o.Usage.Docs.Remaining)

		if len(o.RecentProjects) > 0 {
			fmt.Fprintln(out, "\nRecent projects:")
			for _, p := range o.RecentProjects {
				fmt.Fprintf(out, "  %-36s  %-10s  %s\n", truncate(p.Name, 36), p.Status, dateOrDash(p.CreatedAt.Format("2006-01-02")))
			}
		}
		if len(o.RecentDocs) > 0 {
			fmt.Fprintln(out, "\nRecent documents:")
			for _, d := range o.RecentDocs {
				fmt.Fprintf(out, "  %-36s  %-9s  %s\n", truncate(d.Filename, 36), humanSize(d.FileSize), dateOrDash(d.UploadedAt.Format("2006-01-02")))
			}
		}
		return nil
	},
}

func init() {
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "Output as JSON")
	RootCmd.AddCommand(overviewCmd)
}
