package tui

import (
	"bytes"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/mapping"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/replay"
)

// Session is what a terminal game plays.
type Session struct {
	Board *game.Board
	Title string
	// Freeze stops the rise after matches for game.StopTime frames.
	Freeze bool
	// Recorder, when set, captures every simulated frame.
	Recorder *replay.Recorder
	Logger   *zap.Logger
}

// Outcome of a finished session.
const (
	OutcomeWin      = "win"
	OutcomeGameOver = "gameover"
	OutcomeQuit     = "quit"
)

// Result summarises a session once the program exits.
type Result struct {
	Outcome     string
	Score       int
	Lines       int
	BestCombo   int
	BestCascade int
	Frames      int
}

// framesPerSecond is the simulation rate the panel timings are tuned for.
const framesPerSecond = 60

type Model struct {
	session Session
	driver  *replay.Driver
	keys    KeyMap
	logger  *zap.Logger
	speed   float64

	lastTick time.Time
	acc      float64

	w int
	h int

	cursorRow int
	cursorCol int
	pending   replay.Input

	paused bool

	score       int
	bestCombo   int
	bestCascade int
	frames      int
	last        game.MatchInfo
	lastAge     int

	viewBuf bytes.Buffer
	canvas  canvasBuf
}

// NewModel plays s at speed times real time.
func NewModel(s Session, speed float64) *Model {
	if speed <= 0 {
		speed = 1
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := s.Board
	return &Model{
		session:   s,
		driver:    replay.NewDriver(b, s.Freeze),
		keys:      Keys,
		logger:    logger,
		speed:     speed,
		cursorRow: b.Rows() - 1,
		cursorCol: (b.Columns() - 2) / 2,
	}
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = time.Second / framesPerSecond
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return tickCmd(time.Second / framesPerSecond)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w = msg.Width
		m.h = msg.Height
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		if m.lastTick.IsZero() {
			m.lastTick = now
			return m, tickCmd(m.frameDuration())
		}

		// Clamp so a stalled terminal does not fast-forward the board.
		dt := now.Sub(m.lastTick).Seconds()
		m.lastTick = now
		if dt < 0 {
			dt = 0
		}
		if dt > 0.05 {
			dt = 0.05
		}

		if !m.paused && !m.finished() {
			m.acc += dt * m.speed
			const fixed = 1.0 / framesPerSecond
			const maxStepsPerTick = 6

			steps := 0
			for m.acc >= fixed && steps < maxStepsPerTick {
				m.step()
				m.acc -= fixed
				steps++
				if m.finished() {
					break
				}
			}
			if steps >= maxStepsPerTick {
				m.acc = math.Mod(m.acc, fixed)
			}
		}
		return m, tickCmd(m.frameDuration())
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		if !m.finished() {
			m.logger.Info("session quit", zap.Int("frames", m.frames), zap.Int("score", m.score))
		}
		return tea.Quit
	}
	if m.finished() {
		return nil
	}

	b := m.session.Board
	switch {
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Faster):
		m.speed = min(m.speed+0.25, 4)
	case key.Matches(msg, m.keys.Slower):
		m.speed = max(m.speed-0.25, 0.25)
	case m.paused:
	case key.Matches(msg, m.keys.Up):
		m.cursorRow = max(m.cursorRow-1, 0)
		m.pending |= replay.Up
	case key.Matches(msg, m.keys.Down):
		m.cursorRow = min(m.cursorRow+1, b.Rows()-1)
		m.pending |= replay.Down
	case key.Matches(msg, m.keys.Left):
		m.cursorCol = max(m.cursorCol-1, 0)
		m.pending |= replay.Left
	case key.Matches(msg, m.keys.Right):
		m.cursorCol = min(m.cursorCol+1, b.Columns()-2)
		m.pending |= replay.Right
	case key.Matches(msg, m.keys.Swap):
		m.pending |= replay.ButtonA
	case key.Matches(msg, m.keys.Raise):
		m.pending |= replay.ButtonL
	}
	return nil
}

// step simulates one frame with the input gathered since the last one.
func (m *Model) step() {
	in := m.pending
	m.pending = 0

	info := m.driver.Step(in, m.cursorRow, m.cursorCol)
	if m.session.Recorder != nil {
		m.session.Recorder.Record(in, m.cursorRow, m.cursorCol)
	}
	m.frames++
	m.lastAge++

	if info.Matched() {
		m.score += game.Points(info)
		m.bestCombo = max(m.bestCombo, info.Combo)
		m.bestCascade = max(m.bestCascade, info.Cascade)
		m.last = info
		m.lastAge = 0
		if info.Combo > 3 || info.FallMatch {
			m.logger.Debug("match", zap.Stringer("info", info), zap.Int("frame", m.frames))
		}
	}

	if m.finished() {
		m.logger.Info("session over",
			zap.String("outcome", m.outcome()),
			zap.Int("score", m.score),
			zap.Int("lines", m.session.Board.Lines()),
			zap.Int("frames", m.frames),
		)
	}
}

func (m *Model) finished() bool { return m.session.Board.Finished() }

func (m *Model) outcome() string {
	switch {
	case m.session.Board.State() == game.Win:
		return OutcomeWin
	case m.session.Board.State() == game.GameOver:
		return OutcomeGameOver
	}
	return OutcomeQuit
}

// Result reports how the session went so far.
func (m *Model) Result() Result {
	return Result{
		Outcome:     m.outcome(),
		Score:       m.score,
		Lines:       m.session.Board.Lines(),
		BestCombo:   m.bestCombo,
		BestCascade: m.bestCascade,
		Frames:      m.frames,
	}
}

func (m *Model) frameDuration() time.Duration {
	// View runs after every message; slow down when nothing moves.
	if m.finished() || m.paused {
		return time.Second / 15
	}
	return time.Second / framesPerSecond
}

func (m *Model) View() string {
	m.viewBuf.Reset()
	b := &m.viewBuf

	grid := mapping.BuildCells(m.session.Board)
	hud := renderHUD(m.session.Title, m.session.Board, m.score, m.speed)
	info := m.infoLine()

	var overlay *fieldOverlay
	switch {
	case m.session.Board.State() == game.Win:
		overlay = &fieldOverlay{
			Title:  "CLEAR!",
			Lines:  []string{scoreLine(m.score), "board cleared"},
			Footer: "q quit",
			Good:   true,
		}
	case m.session.Board.State() == game.GameOver:
		overlay = &fieldOverlay{
			Title:  "GAME OVER",
			Lines:  []string{scoreLine(m.score), linesLine(m.session.Board.Lines())},
			Footer: "q quit",
		}
	case m.paused:
		overlay = &fieldOverlay{Title: "PAUSED", Footer: "p resume"}
	}

	field := renderField(&m.canvas, grid, m.cursorRow, m.cursorCol, overlay)
	writeCentered(b, m.w, m.h, []string{hud, info}, field, renderHelp(m.keys))
	return b.String()
}

func (m *Model) infoLine() string {
	if m.lastAge < framesPerSecond && m.last.Matched() {
		return renderMatch(m.last)
	}
	if m.session.Board.Danger() {
		return styleDanger.Render("DANGER")
	}
	return ""
}
