package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/replay"
)

func newReplayCmd(deps Deps, opts *options) *cobra.Command {
	var debug bool

	c := &cobra.Command{
		Use:   "replay TRACE",
		Short: "Re-simulate a recorded trace and check it frame by frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps, *opts)
			if err != nil {
				return err
			}
			if deps.ReadFile == nil {
				return fmt.Errorf("deps.ReadFile is nil")
			}
			if deps.NewLogger == nil {
				return fmt.Errorf("deps.NewLogger is nil")
			}
			data, err := deps.ReadFile(args[0])
			if err != nil {
				return err
			}
			tr, err := replay.Decode(bytes.NewReader(data))
			if err != nil {
				return err
			}

			logPath, level := cfg.LogPath, cfg.LogLevel
			if debug {
				level = "debug"
				if logPath == "" {
					logPath = "stderr"
				}
			}
			logger, err := deps.NewLogger(logPath, level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sim, err := replay.NewSimulation(tr, cfg.SpeedSettings(), logger)
			if err != nil {
				return err
			}
			if err := sim.Verify(); err != nil {
				fmt.Fprintf(deps.Stdout, "trace %s diverged\n", args[0])
				return err
			}
			fmt.Fprintf(deps.Stdout, "trace %s ok: %d frames, %d lines, state %s\n",
				args[0], sim.Frame(), sim.Board().Lines(), sim.Board().State())
			return nil
		},
	}
	c.Flags().BoolVar(&debug, "debug", false, "log every simulated frame")
	return c
}
