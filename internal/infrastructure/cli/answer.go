package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
)

var (
	answerText      string
	answerFile      string
	rephraseInstr   string
	rephraseAndSave bool
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Edit and rephrase answers",
}

var answerSetCmd = &cobra.Command{
	Use:   "set <project-id> <question-id>",
	Short: "Replace an answer and save it",
	Long: `Replace an answer and save it.

Examples:
  rfpdesk answer set <project> <question> --text "We encrypt data at rest."
  rfpdesk answer set <project> <question> --file answer.md`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := answerInput()
		if err != nil {
			return err
		}
		s, ws, err := openQuestion(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		defer s.close()

		if err := ws.EditDraft(text); err != nil {
			return MapError(err)
		}
		if err := ws.Save(s.ctx); err != nil {
			return MapError(fmt.Errorf("failed to save answer: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved answer for %s\n", args[1])
		return nil
	},
}

var answerRephraseCmd = &cobra.Command{
	Use:   "rephrase <project-id> <question-id>",
	Short: "Ask the AI to rewrite an answer",
	Long: `Ask the AI to rewrite an answer. The rewrite is printed for review and
only saved when --save is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.ValidateRephrase("-", rephraseInstr); err != nil {
			return MapError(err)
		}
		s, ws, err := openQuestion(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		defer s.close()

		res, err := ws.Rephrase(s.ctx, rephraseInstr)
		if err != nil {
			return MapError(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Candidate)
		if !rephraseAndSave {
			fmt.Fprintln(out, "\nNot saved. Re-run with --save to keep it.")
			return nil
		}
		if err := ws.Save(s.ctx); err != nil {
			if errors.Is(err, application.ErrNothingToSave) {
				fmt.Fprintln(out, "\nRewrite matches the saved answer; nothing to save.")
				return nil
			}
			return MapError(fmt.Errorf("failed to save answer: %w", err))
		}
		fmt.Fprintf(out, "\nSaved answer for %s\n", args[1])
		return nil
	},
}

func answerInput() (string, error) {
	switch {
	case answerText != "" && answerFile != "":
		return "", NewCLIError("conflicting flags", "Use either --text or --file", nil)
	case answerFile != "":
		b, err := os.ReadFile(answerFile)
		if err != nil {
			return "", fmt.Errorf("failed to read answer file: %w", err)
		}
		return string(b), nil
	case answerText != "":
		return answerText, nil
	}
	return "", NewCLIError("no answer given", "Pass --text or --file", nil)
}

// openQuestion opens a workspace on the project and selects the question.
func openQuestion(cmd *cobra.Command, projectID, questionID string) (*session, *application.Workspace, error) {
	s, err := openSession(cmd)
	if err != nil {
		return nil, nil, err
	}
	ws, err := s.NewWorkspace()
	if err != nil {
		s.close()
		return nil, nil, err
	}
	if err := ws.Open(s.ctx, projectID); err != nil {
		s.close()
		return nil, nil, MapError(fmt.Errorf("failed to open project: %w", err))
	}
	if err := ws.SelectQuestion(questionID); err != nil {
		s.close()
		return nil, nil, MapError(err)
	}
	return s, ws, nil
}

func init() {
	answerSetCmd.Flags().StringVar(&answerText, "text", "", "New answer text")
	answerSetCmd.Flags().StringVar(&answerFile, "file", "", "Read the new answer from a file")
	answerRephraseCmd.Flags().StringVarP(&rephraseInstr, "instruction", "i", "", "How to rewrite the answer (required)")
	answerRephraseCmd.Flags().BoolVar(&rephraseAndSave, "save", false, "Save the rewrite")
	_ = answerRephraseCmd.MarkFlagRequired("instruction")

	answerCmd.AddCommand(answerSetCmd, answerRephraseCmd)
	RootCmd.AddCommand(answerCmd)
}
