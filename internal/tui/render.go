package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TricksterGuy/bottomless-block-barrage/internal/game"
	"github.com/TricksterGuy/bottomless-block-barrage/internal/mapping"
)

var (
	styleHudLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	styleHudValue = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d0d7de"))
	styleHudScore = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd33d"))
	styleHudOk    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7ee787"))
	styleHudDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	styleDanger   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff7b72"))
	styleBorder   = lipgloss.NewStyle().Foreground(lipgloss.Color("#30363d"))
	styleCursor   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))

	// Indexed by game.Value.
	panelColors = [...]lipgloss.Color{
		game.Empty:   "",
		game.Red:     "#f85149",
		game.Green:   "#3fb950",
		game.Cyan:    "#39c5cf",
		game.Yellow:  "#d29922",
		game.Purple:  "#a371f7",
		game.Blue:    "#388bfd",
		game.Silver:  "#8b949e",
		game.Special: "#6e7681",
	}
	flashColor = lipgloss.Color("#f0f6fc")
)

const riseSteps = 16

func panelColor(v game.Value) lipgloss.Color {
	if int(v) < len(panelColors) {
		return panelColors[v]
	}
	return panelColors[game.Special]
}

func scoreLine(score int) string { return fmt.Sprintf("score: %8d", score) }

func linesLine(lines int) string { return fmt.Sprintf("lines: %8d", lines) }

func renderHUD(title string, b *game.Board, score int, speed float64) string {
	sep := styleHudDim.Render("  |  ")

	parts := []string{
		styleHudLabel.Render("mode ") + styleHudValue.Render(title),
		sep,
		styleHudLabel.Render("score ") + styleHudScore.Render(fmt.Sprintf("%8d", score)),
		sep,
	}
	if b.Type() == game.Puzzle {
		parts = append(parts, styleHudLabel.Render("moves ")+styleHudValue.Render(fmt.Sprintf("%3d", b.Moves())))
	} else {
		fill := min(max(b.Rise(), 0), riseSteps)
		bar := styleHudLabel.Render("[") +
			styleHudOk.Render(strings.Repeat("█", fill)) +
			styleHudDim.Render(strings.Repeat("░", riseSteps-fill)) +
			styleHudLabel.Render("]")
		parts = append(parts, styleHudLabel.Render("lines ")+styleHudValue.Render(fmt.Sprintf("%4d", b.Lines()))+" "+bar)
	}
	parts = append(parts,
		sep,
		styleHudLabel.Render("speed ")+styleHudValue.Render(fmt.Sprintf("%.2fx", speed)),
	)
	if b.State() == game.Stopped {
		parts = append(parts, sep, styleHudOk.Render(fmt.Sprintf("stop %d", b.Timeout())))
	}
	return strings.Join(parts, "")
}

func renderMatch(info game.MatchInfo) string {
	var parts []string
	if info.Combo > 3 {
		parts = append(parts, styleHudScore.Render(fmt.Sprintf("%d combo!", info.Combo)))
	}
	if info.FallMatch && info.Cascade > 0 {
		parts = append(parts, styleHudOk.Render(fmt.Sprintf("x%d cascade!", info.Cascade+1)))
	}
	if info.SwapMatch && info.Chain > 0 {
		parts = append(parts, styleHudOk.Render(fmt.Sprintf("%d chain", info.Chain+1)))
	}
	return strings.Join(parts, "  ")
}

func renderHelp(k KeyMap) string {
	parts := []string{
		k.Up.Help().Key + "/" + k.Down.Help().Key + "/" + k.Left.Help().Key + "/" + k.Right.Help().Key + " move",
	}
	for _, b := range k.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleHudDim.Render("(" + strings.Join(parts, ", ") + ")")
}

// cellRunes picks the two characters and the style of one board cell.
func cellRunes(c mapping.Cell) ([2]rune, lipgloss.Style) {
	st := lipgloss.NewStyle()
	color := panelColor(c.Value)
	switch c.Look {
	case mapping.LookEmpty:
		if c.Danger {
			return [2]rune{'·', '·'}, st.Foreground(lipgloss.Color("#6e2a2a"))
		}
		return [2]rune{' ', ' '}, st
	case mapping.LookNext:
		return [2]rune{'░', '░'}, st.Foreground(color)
	case mapping.LookFlash:
		if c.Phase == 0 {
			return [2]rune{' ', ' '}, st.Background(flashColor)
		}
		return [2]rune{' ', ' '}, st.Background(color)
	case mapping.LookPopping:
		if c.Colors > 1 {
			return [2]rune{'<', '>'}, st.Foreground(color)
		}
		return [2]rune{'(', ')'}, st.Foreground(color)
	case mapping.LookLanded:
		if c.Phase < mapping.PhaseSteps/2 {
			return [2]rune{'▄', '▄'}, st.Foreground(color)
		}
	}
	if c.Value.IsSpecial() {
		return [2]rune{'?', '?'}, st.Background(color).Foreground(lipgloss.Color("#0d1117"))
	}
	return [2]rune{' ', ' '}, st.Background(color)
}

// renderField draws the bordered board, staging row included, into the
// canvas and returns its lines.
func renderField(canvas *canvasBuf, g mapping.Grid, cursorRow, cursorCol int, overlay *fieldOverlay) []string {
	w := g.Cols*2 + 2
	h := g.Rows + 3
	canvas.Resize(w, h)
	canvas.Fill(" ")

	hLine := styleBorder.Render("─")
	vLine := styleBorder.Render("│")
	warn := styleDanger.Render("!")
	for x := 1; x < w-1; x++ {
		canvas.Set(x, 0, hLine)
		canvas.Set(x, h-1, hLine)
	}
	for y := 1; y < h-1; y++ {
		canvas.Set(0, y, vLine)
		canvas.Set(w-1, y, vLine)
	}
	canvas.Set(0, 0, styleBorder.Render("╭"))
	canvas.Set(w-1, 0, styleBorder.Render("╮"))
	canvas.Set(0, h-1, styleBorder.Render("╰"))
	canvas.Set(w-1, h-1, styleBorder.Render("╯"))

	put := func(y, col int, c mapping.Cell, cursor int) {
		runes, st := cellRunes(c)
		switch cursor {
		case -1:
			runes[0] = '['
			st = st.Inherit(styleCursor)
		case 1:
			runes[1] = ']'
			st = st.Inherit(styleCursor)
		}
		canvas.Set(1+col*2, y, st.Render(string(runes[0])))
		canvas.Set(2+col*2, y, st.Render(string(runes[1])))
	}

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cursor := 0
			if r == cursorRow {
				if c == cursorCol {
					cursor = -1
				} else if c == cursorCol+1 {
					cursor = 1
				}
			}
			put(1+r, c, g.Cells[r][c], cursor)
			if r == 0 && g.Cells[r][c].Danger {
				canvas.Set(1+c*2, 0, warn)
				canvas.Set(2+c*2, 0, warn)
			}
		}
	}
	for c := 0; c < g.Cols; c++ {
		put(1+g.Rows, c, g.Next[c], 0)
	}

	if overlay != nil {
		applyOverlay(canvas, overlay)
	}
	return canvas.Lines()
}

// writeCentered lays the header, field and footer out in the middle of a
// w x h terminal.
func writeCentered(b *bytes.Buffer, w, h int, header []string, field []string, footer string) {
	contentW := 0
	for _, s := range header {
		contentW = max(contentW, lipgloss.Width(s))
	}
	for _, s := range field {
		contentW = max(contentW, lipgloss.Width(s))
	}
	contentW = max(contentW, lipgloss.Width(footer))

	leftPad := ""
	if w > contentW {
		leftPad = strings.Repeat(" ", (w-contentW)/2)
	}
	contentH := len(header) + len(field) + 1
	if h > contentH {
		b.WriteString(strings.Repeat("\n", (h-contentH)/2))
	}

	for _, s := range header {
		b.WriteString(leftPad)
		b.WriteString(s)
		b.WriteByte('\n')
	}
	// The field is narrower than the HUD; centre it under it.
	fieldPad := leftPad
	if len(field) > 0 {
		if fw := lipgloss.Width(field[0]); contentW > fw {
			fieldPad += strings.Repeat(" ", (contentW-fw)/2)
		}
	}
	for _, s := range field {
		b.WriteString(fieldPad)
		b.WriteString(s)
		b.WriteByte('\n')
	}
	b.WriteString(leftPad)
	b.WriteString(footer)
	b.WriteByte('\n')
}

type canvasBuf struct {
	w     int
	h     int
	cells []string // flat: y*w + x
}

func (c *canvasBuf) Reset() {
	c.w = 0
	c.h = 0
	c.cells = nil
}

func (c *canvasBuf) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		c.Reset()
		return
	}
	n := w * h
	if c.w == w && c.h == h && cap(c.cells) >= n {
		c.cells = c.cells[:n]
		return
	}
	c.w = w
	c.h = h
	c.cells = make([]string, n)
}

func (c *canvasBuf) Fill(cell string) {
	for i := range c.cells {
		c.cells[i] = cell
	}
}

func (c *canvasBuf) Set(x, y int, cell string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell
}

func (c *canvasBuf) Lines() []string {
	out := make([]string, c.h)
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		sb.Reset()
		for _, cell := range c.cells[y*c.w : (y+1)*c.w] {
			sb.WriteString(cell)
		}
		out[y] = sb.String()
	}
	return out
}

type fieldOverlay struct {
	Title  string
	Lines  []string
	Footer string
	Good   bool
}

func applyOverlay(canvas *canvasBuf, ov *fieldOverlay) {
	w, h := canvas.w, canvas.h
	if w == 0 || h == 0 {
		return
	}

	lines := make([]string, 0, 2+len(ov.Lines))
	if ov.Title != "" {
		lines = append(lines, ov.Title)
	}
	lines = append(lines, ov.Lines...)
	if ov.Footer != "" {
		lines = append(lines, ov.Footer)
	}

	innerW := 0
	for _, s := range lines {
		innerW = max(innerW, len(s))
	}
	// One column of padding and one of border on each side.
	boxW := min(innerW+4, w)
	boxH := min(len(lines)+2, h)
	innerW = boxW - 4

	x0 := (w - boxW) / 2
	y0 := (h - boxH) / 2

	borderColor, titleColor := lipgloss.Color("#30363d"), lipgloss.Color("#ff7b72")
	if ov.Good {
		borderColor, titleColor = "#7ee787", "#7ee787"
	}
	panel := lipgloss.NewStyle().Background(lipgloss.Color("#161b22"))
	border := panel.Bold(true).Foreground(borderColor)

	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			canvas.Set(x, y, panel.Render(" "))
		}
	}
	for x := x0 + 1; x < x0+boxW-1; x++ {
		canvas.Set(x, y0, border.Render("─"))
		canvas.Set(x, y0+boxH-1, border.Render("─"))
	}
	for y := y0 + 1; y < y0+boxH-1; y++ {
		canvas.Set(x0, y, border.Render("│"))
		canvas.Set(x0+boxW-1, y, border.Render("│"))
	}
	canvas.Set(x0, y0, border.Render("╭"))
	canvas.Set(x0+boxW-1, y0, border.Render("╮"))
	canvas.Set(x0, y0+boxH-1, border.Render("╰"))
	canvas.Set(x0+boxW-1, y0+boxH-1, border.Render("╯"))

	for i, line := range lines {
		y := y0 + 1 + i
		if y >= y0+boxH-1 {
			break
		}
		if len(line) > innerW {
			line = line[:max(innerW, 0)]
		}
		fg := lipgloss.Color("#d0d7de")
		switch {
		case i == 0 && ov.Title != "":
			fg = titleColor
		case strings.HasPrefix(line, "score:"):
			fg = "#ffd33d"
		case i == len(lines)-1 && ov.Footer != "":
			fg = "#8b949e"
		}
		st := panel.Foreground(fg)
		startX := x0 + 2 + (innerW-len(line))/2
		for j := 0; j < len(line); j++ {
			canvas.Set(startX+j, y, st.Render(string(line[j])))
		}
	}
}
