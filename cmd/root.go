package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/config"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/github"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/logging"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/records"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/tui"
)

type Deps struct {
	LoadConfig  func(path string) (config.Config, error)
	NewLogger   func(path, level string) (*zap.Logger, error)
	ReadFile    func(path string) ([]byte, error)
	FetchPuzzle func(ctx context.Context, ref github.Ref) ([]byte, error)
	OpenStore   func(path string) (records.Store, error)
	RunTUI      func(s tui.Session, speed float64) (tui.Result, error)
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
}

func DefaultDeps() Deps {
	return Deps{
		LoadConfig:  config.Load,
		NewLogger:   logging.New,
		ReadFile:    os.ReadFile,
		FetchPuzzle: github.FetchFile,
		OpenStore:   openSQLite,
		RunTUI:      defaultRunTUI,
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

func openSQLite(path string) (records.Store, error) {
	return records.NewSQLite(path)
}

// options are the flags shared by every command that plays a board.
type options struct {
	configPath string
	logPath    string
	speed      float64
	record     string
	freeze     bool
}

func NewRootCmd(deps Deps) *cobra.Command {
	var opts options
	var mode, difficulty string
	var seed uint64

	c := &cobra.Command{
		Use:          "bbb",
		Short:        "Swap, match and chain falling panels in your terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.speed <= 0 {
				return fmt.Errorf("--speed must be > 0")
			}
			cfg, err := loadConfig(deps, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("difficulty") {
				cfg.Difficulty = difficulty
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(deps.Now().UnixNano())
			}
			return play(cmd.Context(), deps, cfg, opts, seed)
		},
	}

	pf := c.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&opts.logPath, "log", "", "write logs to this file")
	pf.Float64VarP(&opts.speed, "speed", "s", 1.0, "game speed multiplier (1.0 is normal)")
	pf.StringVar(&opts.record, "record", "", "save a replay trace of the session to this file")
	pf.BoolVar(&opts.freeze, "freeze", true, "stop the rise for a while after combos and cascades")

	c.Flags().StringVarP(&mode, "mode", "m", "endless", "endless or score")
	c.Flags().StringVarP(&difficulty, "difficulty", "d", "easy", fmt.Sprintf("panel speed preset %v", config.Difficulties()))
	c.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: current time)")

	c.AddCommand(newPuzzleCmd(deps, &opts))
	c.AddCommand(newReplayCmd(deps, &opts))
	c.AddCommand(newScoresCmd(deps, &opts))

	c.SetOut(deps.Stdout)
	c.SetErr(deps.Stderr)
	return c
}

// loadConfig reads the config file and applies the shared flags.
func loadConfig(deps Deps, opts options) (config.Config, error) {
	if deps.LoadConfig == nil {
		return config.Config{}, fmt.Errorf("deps.LoadConfig is nil")
	}
	cfg, err := deps.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.logPath != "" {
		cfg.LogPath = opts.logPath
	}
	return cfg, nil
}
