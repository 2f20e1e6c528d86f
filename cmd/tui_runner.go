package cmd

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/tui"
)

func defaultRunTUI(s tui.Session, speed float64) (tui.Result, error) {
	m := tui.NewModel(s, speed)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return tui.Result{}, err
	}
	return m.Result(), nil
}
