package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive ask view",
	Long: `Launch the interactive terminal view for asking questions.

Controls:
  Enter  - Ask
  Ctrl-C - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if answerService == nil || engineService == nil {
		return errors.New("services not configured")
	}

	model := tui.New(cmd.Context(), answerService, engineService, askTopK)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
