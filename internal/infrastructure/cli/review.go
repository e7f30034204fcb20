package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review <project-id>",
	Short: "Review and edit a project's answers interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		ws, err := s.NewWorkspace()
		if err != nil {
			return err
		}
		if os.Getenv("RFPDESK_SKIP_REVIEW_RUN") == "true" {
			return MapError(ws.Open(s.ctx, args[0]))
		}
		return tui.Run(s.ctx, ws, args[0])
	},
}

func init() {
	RootCmd.AddCommand(reviewCmd)
}
