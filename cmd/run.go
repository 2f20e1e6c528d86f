package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/config"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/records"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/replay"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/source"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/tui"
)

// session is one board ready to be played.
type session struct {
	board *game.Board
	title string
	mode  string
	seed  uint64
}

func play(ctx context.Context, deps Deps, cfg config.Config, opts options, seed uint64) error {
	src, err := source.NewRandom(cfg.Rows, cfg.Columns, cfg.Colors, cfg.StartRows, seed)
	if err != nil {
		return err
	}
	board, err := game.NewBoard(game.Options{
		Rows:     cfg.Rows,
		Columns:  cfg.Columns,
		Type:     cfg.BoardType(),
		Settings: cfg.SpeedSettings(),
		Speed:    cfg.Speed,
		Source:   src,
	})
	if err != nil {
		return fmt.Errorf("failed to build board: %w", err)
	}
	return runSession(ctx, deps, cfg, opts, session{board: board, title: cfg.Mode, mode: cfg.Mode, seed: seed})
}

func runSession(ctx context.Context, deps Deps, cfg config.Config, opts options, s session) error {
	if deps.RunTUI == nil {
		return fmt.Errorf("deps.RunTUI is nil")
	}
	if deps.NewLogger == nil {
		return fmt.Errorf("deps.NewLogger is nil")
	}
	logger, err := deps.NewLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ts := tui.Session{
		Board:  s.board,
		Title:  s.title,
		Freeze: opts.freeze && s.board.Type() != game.Puzzle,
		Logger: logger,
	}
	if opts.record != "" {
		ts.Recorder = replay.NewRecorder(s.board, ts.Freeze)
	}
	logger.Info("session start",
		zap.String("mode", s.mode),
		zap.String("difficulty", cfg.Difficulty),
		zap.Uint64("seed", s.seed),
	)

	res, err := deps.RunTUI(ts, opts.speed)
	if err != nil {
		return err
	}

	if ts.Recorder != nil {
		if err := ts.Recorder.Save(opts.record); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: %v\n", err)
		} else {
			logger.Info("trace saved", zap.String("path", opts.record), zap.Int("frames", ts.Recorder.Frames()))
		}
	}

	sessionID := ""
	if ts.Recorder != nil {
		sessionID = ts.Recorder.Session()
	}
	if err := saveRun(ctx, deps, cfg.RecordsPath, records.Run{
		SessionID:   sessionID,
		Mode:        s.mode,
		Difficulty:  cfg.Difficulty,
		Seed:        s.seed,
		Score:       res.Score,
		Lines:       res.Lines,
		BestCombo:   res.BestCombo,
		BestCascade: res.BestCascade,
		Frames:      res.Frames,
		Outcome:     res.Outcome,
	}); err != nil {
		logger.Warn("record run", zap.Error(err))
		fmt.Fprintf(deps.Stderr, "warning: run not saved: %v\n", err)
	}

	fmt.Fprintf(deps.Stdout, "%s: score %d, lines %d, best combo %d, best cascade %d\n",
		res.Outcome, res.Score, res.Lines, res.BestCombo, res.BestCascade)
	return nil
}

// saveRun stores a finished run. Sessions that never ran a frame are not
// worth keeping.
func saveRun(ctx context.Context, deps Deps, path string, run records.Run) error {
	if run.Frames == 0 || deps.OpenStore == nil {
		return nil
	}
	if run.SessionID == "" {
		run.SessionID = uuid.NewString()
	}
	if deps.Now != nil {
		run.PlayedTS = deps.Now()
	}
	store, err := deps.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = store.RecordRun(ctx, run)
	return err
}
