package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/github"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/puzzle"
)

func newPuzzleCmd(deps Deps, opts *options) *cobra.Command {
	var repo, ref string

	c := &cobra.Command{
		Use:   "puzzle FILE",
		Short: "Clear a puzzle board within its move budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps, *opts)
			if err != nil {
				return err
			}
			data, err := readPuzzle(cmd, deps, args[0], repo, ref)
			if err != nil {
				return err
			}
			p, err := puzzle.DecodeBytes(data)
			if err != nil {
				return fmt.Errorf("invalid puzzle %s: %w", args[0], err)
			}
			board, err := p.Board(cfg.SpeedSettings())
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), deps, cfg, *opts, session{
				board: board,
				title: "puzzle " + filepath.Base(args[0]),
				mode:  "puzzle",
			})
		},
	}
	c.Flags().StringVar(&repo, "repo", "", "read FILE from this GitHub repository (owner/name)")
	c.Flags().StringVar(&ref, "ref", "", "branch, tag or commit to read from (default: repository default branch)")
	return c
}

func readPuzzle(cmd *cobra.Command, deps Deps, path, repo, ref string) ([]byte, error) {
	if repo == "" {
		if deps.ReadFile == nil {
			return nil, fmt.Errorf("deps.ReadFile is nil")
		}
		return deps.ReadFile(path)
	}
	if deps.FetchPuzzle == nil {
		return nil, fmt.Errorf("deps.FetchPuzzle is nil")
	}
	r, err := github.ParseRef(repo, path, ref)
	if err != nil {
		return nil, err
	}
	data, err := deps.FetchPuzzle(cmd.Context(), r)
	if err != nil {
		if github.IsAuthError(err) {
			fmt.Fprintln(deps.Stderr, "hint: set GITHUB_TOKEN or run `gh auth login`")
		}
		return nil, fmt.Errorf("failed to fetch puzzle: %w", err)
	}
	return data, nil
}
