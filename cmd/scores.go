package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newScoresCmd(deps Deps, opts *options) *cobra.Command {
	var mode string
	var limit int

	c := &cobra.Command{
		Use:   "scores",
		Short: "List the best recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0")
			}
			cfg, err := loadConfig(deps, *opts)
			if err != nil {
				return err
			}
			if deps.OpenStore == nil {
				return fmt.Errorf("deps.OpenStore is nil")
			}
			store, err := deps.OpenStore(cfg.RecordsPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			runs, err := store.TopRuns(cmd.Context(), mode, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(deps.Stdout, "no runs recorded yet")
				return nil
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#30363d"))).
				Headers("#", "mode", "score", "lines", "combo", "cascade", "outcome", "played")
			for i, r := range runs {
				t.Row(
					fmt.Sprint(i+1),
					r.Mode,
					fmt.Sprint(r.Score),
					fmt.Sprint(r.Lines),
					fmt.Sprint(r.BestCombo),
					fmt.Sprint(r.BestCascade),
					r.Outcome,
					r.PlayedTS.Local().Format("2006-01-02 15:04"),
				)
			}
			fmt.Fprintln(deps.Stdout, t.Render())
			return nil
		},
	}
	c.Flags().StringVarP(&mode, "mode", "m", "", "only show this mode (endless, score or puzzle)")
	c.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return c
}
