package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/watch"
	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

var (
	uploadType     string
	uploadTags     []string
	uploadWatchDir string
	uploadInclude  string
	uploadQuiet    time.Duration
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload documents to the knowledge library",
	Long: `Upload documents to the knowledge library as one batch.

Files the server rejects are listed with the reason; the rest are kept.
With --watch, files dropped into the directory are uploaded in batches
once the folder has been quiet for --quiet.

Examples:
  rfpdesk upload policy.pdf soc2.pdf --type report --tags security,soc2
  rfpdesk upload --watch ~/rfp-drop`,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	docType, err := rfp.ParseDocType(uploadType)
	if err != nil {
		return MapError(err)
	}
	meta := application.UploadMetadata{DocType: docType, Tags: uploadTags}

	if uploadWatchDir == "" {
		files, err := application.LoadUploadFiles(args)
		if err != nil {
			return MapError(err)
		}
		if err := application.ValidateBatch(files); err != nil {
			return MapError(err)
		}
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		res, err := s.Uploads.Submit(s.ctx, files, meta)
		if err != nil {
			return MapError(fmt.Errorf("failed to upload documents: %w", err))
		}
		printBatch(cmd.OutOrStdout(), res)
		if res.AllFailed() {
			return &CLIError{Message: "no documents were uploaded", ExitCode: 3}
		}
		return nil
	}

	if len(args) > 0 {
		return NewCLIError("conflicting arguments", "Pass files or --watch, not both", nil)
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()
	filter := watch.NewPatternFilter(watch.DocumentPatterns, nil)
	if uploadInclude != "" {
		filter = watch.NewPatternFilter(watch.ParsePatterns(uploadInclude), nil)
	}
	folder, err := watch.NewDropFolder(uploadWatchDir, uploadQuiet, filter, func(ctx context.Context, paths []string) {
		files, err := application.LoadUploadFiles(paths)
		if err != nil {
			fmt.Fprintf(out, "Skipping batch: %v\n", err)
			return
		}
		res, err := s.Uploads.Submit(ctx, files, meta)
		if err != nil {
			fmt.Fprintf(out, "Upload failed: %v\n", err)
			return
		}
		printBatch(out, res)
	}, s.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(out, "Watching %s for documents (Ctrl+C to stop)\n", uploadWatchDir)
	if err := folder.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func printBatch(out io.Writer, res *application.BatchResult) {
	fmt.Fprintln(out, res.Summary())
	for _, f := range res.Succeeded {
		fmt.Fprintf(out, "  ok      %s\n", f)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(out, "  failed  %s: %s\n", f.Name, f.Reason)
	}
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadType, "type", "t", "other", "Document type (proposal, contract, report, presentation, other)")
	uploadCmd.Flags().StringSliceVar(&uploadTags, "tags", nil, "Comma-separated tags")
	uploadCmd.Flags().StringVarP(&uploadWatchDir, "watch", "w", "", "Watch a drop folder instead of uploading the given files")
	uploadCmd.Flags().StringVar(&uploadInclude, "include", "", "Comma-separated glob patterns for --watch (default: document types)")
	uploadCmd.Flags().DurationVar(&uploadQuiet, "quiet", 2*time.Second, "Quiet window before a watched batch is sent")
	RootCmd.AddCommand(uploadCmd)
}
