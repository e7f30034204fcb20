package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/internal/infrastructure/tui"
	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/listing"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
	"github.com/felixgeelhaar/rfpdesk/pkg/sdk"
)

// Flag variables for project commands
var (
	projectsView listing.View
	projectsJSON bool
	showPage     int
	uploadName   string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List RFP projects",
	Long: `List RFP projects with search, status filter, sort and paging.

Examples:
  rfpdesk projects --search acme
  rfpdesk projects --status completed --sort name
  rfpdesk projects --page 2 --json`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

type projectJSONOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Questions int    `json:"questions"`
	CreatedAt string `json:"created_at"`
}

type projectsJSONOutput struct {
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
	Matched    int                 `json:"matched"`
	Total      int                 `json:"total"`
	Projects   []projectJSONOutput `json:"projects"`
}

func runProjects(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	projects, err := s.Library.Projects(s.ctx)
	if err != nil {
		return MapError(fmt.Errorf("failed to load projects: %w", err))
	}
	page, err := application.ProjectsView(projects, projectsView, s.Config.PageSize)
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	if projectsJSON {
		res := projectsJSONOutput{Page: page.Page, TotalPages: page.TotalPages, Matched: page.Matched, Total: page.Total}
		res.Projects = make([]projectJSONOutput, 0, len(page.Items))
		for _, p := range page.Items {
			res.Projects = append(res.Projects, projectJSONOutput{
				ID:        p.ID,
				Name:      p.Name,
				Status:    string(p.Status),
				Questions: p.QuestionCount(),
				CreatedAt: p.CreatedAt.Format("2006-01-02"),
			})
		}
		return printJSON(out, res)
	}

	counts := application.ProjectStatusCounts(projects)
	fmt.Fprintf(out, "Projects: %d total", counts[listing.FilterAll])
	for _, st := range rfp.AllProjectStatuses() {
		if n := counts[string(st)]; n > 0 {
			fmt.Fprintf(out, ", %d %s", n, st)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	for _, p := range page.Items {
		fmt.Fprintf(out, "%-36s  %-11s  %4d  %s\n", p.ID, p.Status.DisplayName(), p.QuestionCount(), truncate(p.Name, 50))
	}
	printPageFooter(out, page.First, page.Last, page.Matched, page.Page, page.TotalPages)
	return nil
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect, upload and delete RFP projects",
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project's questions with trust badges",
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
		if err := ws.Open(s.ctx, args[0]); err != nil {
			return MapError(fmt.Errorf("failed to open project: %w", err))
		}
		project, _ := ws.Project()
		page := ws.QuestionPage(showPage)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", project.Name, project.Status.DisplayName())
		if f := project.FileName(); f != "" {
			fmt.Fprintf(out, "Source: %s\n", f)
		}
		fmt.Fprintln(out)
		for _, row := range page.Rows {
			answer := "(no answer)"
			if row.Question.HasAnswer() {
				answer = truncate(row.Question.AnswerText(), 60)
			}
			edited := ""
			if row.Question.UserEdited {
				edited = " edited"
			}
			fmt.Fprintf(out, "%3d. %s %s%s\n", row.Index, tui.RenderBadge(row.Badge), row.Question.ID, edited)
			fmt.Fprintf(out, "     Q: %s\n", truncate(row.Question.Text, 70))
			fmt.Fprintf(out, "     A: %s\n", answer)
		}
		printPageFooter(out, page.First, page.Last, page.Total, page.Page, page.TotalPages)
		return nil
	},
}

var projectUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an RFP document as a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := application.LoadUploadFiles(args)
		if err != nil {
			return MapError(err)
		}
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		project, err := s.Uploads.UploadProject(s.ctx, files[0], uploadName)
		if err != nil {
			return MapError(fmt.Errorf("failed to upload project: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s), status %s\n", project.Name, project.ID, project.Status.DisplayName())
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteEntity(cmd, sdk.EntityProject, args[0])
	},
}

func deleteEntity(cmd *cobra.Command, entity sdk.Entity, id string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.Library.Delete(s.ctx, entity, id); err != nil {
		return MapError(fmt.Errorf("failed to delete %s: %w", id, err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

func addViewFlags(cmd *cobra.Command, v *listing.View, sortHelp string) {
	cmd.Flags().StringVarP(&v.Query, "search", "q", "", "Case-insensitive search")
	cmd.Flags().StringVar(&v.Sort, "sort", "", sortHelp)
	cmd.Flags().IntVarP(&v.Page, "page", "p", 1, "Page number")
}

func init() {
	addViewFlags(projectsCmd, &projectsView, "Sort by newest, oldest, name or questions")
	projectsCmd.Flags().StringVarP(&projectsView.Filter, "status", "s", "all", "Filter by status (all, pending, processing, completed, failed)")
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output in JSON format")

	projectShowCmd.Flags().IntVarP(&showPage, "page", "p", 1, "Question page")
	projectUploadCmd.Flags().StringVar(&uploadName, "name", "", "Project name (defaults to the file name)")

	projectCmd.AddCommand(projectShowCmd, projectUploadCmd, projectDeleteCmd)
	RootCmd.AddCommand(projectsCmd, projectCmd)
}
