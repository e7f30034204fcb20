package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Download a project as a spreadsheet, document or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := application.ParseFormat(exportFormat)
		if err != nil {
			return MapError(err)
		}
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		exports := s.Exports
		if exportOut != "" {
			exports = exports.WithDir(exportOut)
		}
		res, err := exports.Export(s.ctx, args[0], format)
		if err != nil {
			return MapError(fmt.Errorf("failed to export project: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%s, %s)\n", res.Path, res.Format.DisplayName(), humanSize(res.Bytes))
		return nil
	},
}

func formatNames() string {
	names := make([]string, 0, 3)
	for _, f := range application.AllFormats() {
		names = append(names, f.Extension())
	}
	return strings.Join(names, ", ")
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Export format ("+formatNames()+")")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (default: export_dir from config)")
	RootCmd.AddCommand(exportCmd)
}
