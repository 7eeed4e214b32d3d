package zmachine

import "fmt"

// Window identifies one of the Z-machine's two text windows. This is
// very deliberately not a V6 screen model: there is no third window, no
// mouse, no pictures.
type Window int

const (
	Lower Window = iota
	Upper
)

// TextStyle is the `set_text_style` bitfield. Bit layout: bit0 reverse
// video, bit1 bold, bit2 italic, bit3 fixed-pitch; all-zero is Roman.
type TextStyle uint16

const (
	Reverse    TextStyle = 0b0001
	Bold       TextStyle = 0b0010
	Italic     TextStyle = 0b0100
	FixedPitch TextStyle = 0b1000
)

func (s TextStyle) Roman() bool      { return s == 0 }
func (s TextStyle) Reverse() bool    { return s&Reverse != 0 }
func (s TextStyle) Bold() bool       { return s&Bold != 0 }
func (s TextStyle) Italic() bool     { return s&Italic != 0 }
func (s TextStyle) FixedPitch() bool { return s&FixedPitch != 0 }

// Color is an RGB triple, resolved from a Z-machine colour number by
// ResolveColor.
type Color struct{ R, G, B int }

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

var namedColors = map[uint16]Color{
	2:  {0, 0, 0},
	3:  {255, 0, 0},
	4:  {0, 255, 0},
	5:  {255, 255, 0},
	6:  {0, 0, 255},
	7:  {255, 0, 255},
	8:  {0, 255, 255},
	9:  {255, 255, 255},
	10: {192, 192, 192},
	11: {128, 128, 128},
	12: {64, 64, 64},
}

// Run is a contiguous span of lower-window text in one style, the unit
// the lower window's output queue accumulates (adjacent same-style prints
// are coalesced into the same run rather than kept as separate calls).
type Run struct {
	Style TextStyle
	Text  string
}

// Cell is one character of the upper (grid) window, for a host renderer
// walking the grid returned by UpperWindow.
type Cell struct {
	Style TextStyle
	Ch    rune
}

// Screen is the two-window display model: a run-based output queue for
// the lower (scrolling) window, and a character grid for the upper
// (status/quote-box) window, including the "resolve height on next
// print" idiom `split_window` documents (eblong.com/zarf/glk/quote-box.html).
type Screen struct {
	current Window

	lowerRuns []Run

	upperLines      [][]Cell
	requestedHeight int
	upperCursorLine int
	upperCursorCol  int

	style TextStyle

	statusLeft, statusRight string
	hasStatus               bool

	cleared bool

	foreground, background               Color
	defaultForeground, defaultBackground Color
}

func newScreen(foreground, background Color) *Screen {
	return &Screen{
		current:           Lower,
		cleared:           true,
		upperCursorLine:   0,
		upperCursorCol:    0,
		foreground:        foreground,
		background:        background,
		defaultForeground: foreground,
		defaultBackground: background,
	}
}

// SetWindow implements `set_window`; switching to the upper window resets
// its cursor to the top-left, matching the standard's note that the
// cursor position is undefined across a window switch otherwise.
func (s *Screen) SetWindow(w Window) {
	if s.current == w {
		return
	}
	s.current = w
	if w == Upper {
		s.upperCursorLine, s.upperCursorCol = 0, 0
	}
}

func (s *Screen) CurrentWindow() Window { return s.current }

// SplitWindow implements `split_window`, growing the upper window's line
// buffer (never shrinking it immediately -- it resolves to the new,
// smaller height only the next time text is printed, per the quote-box
// idiom the standard's authors documented after the fact).
func (s *Screen) SplitWindow(lines int) {
	if s.requestedHeight < lines {
		s.resolveUpperHeight()
		for i := s.requestedHeight; i < lines; i++ {
			s.upperLines = append(s.upperLines, nil)
		}
	}
	s.requestedHeight = lines
}

func (s *Screen) resolveUpperHeight() {
	if len(s.upperLines) > s.requestedHeight {
		s.upperLines = s.upperLines[:s.requestedHeight]
	}
}

// SetCursor implements `set_cursor`; out-of-range values are not
// clamped, and Print grows the grid to reach the cursor.
func (s *Screen) SetCursor(line, col int) {
	if s.current != Upper {
		return
	}
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	s.upperCursorLine, s.upperCursorCol = line, col
}

// SetTextStyle implements `set_text_style`.
func (s *Screen) SetTextStyle(style TextStyle) { s.style = style }

// Print writes text to whichever window is current.
func (s *Screen) Print(text string) {
	if s.current == Lower {
		s.printLower(text)
		return
	}
	s.printUpper(text)
}

func (s *Screen) printLower(text string) {
	if n := len(s.lowerRuns); n > 0 && s.lowerRuns[n-1].Style == s.style {
		s.lowerRuns[n-1].Text += text
		return
	}
	s.lowerRuns = append(s.lowerRuns, Run{Style: s.style, Text: text})
}

func (s *Screen) printUpper(text string) {
	s.resolveUpperHeight()
	for _, c := range text {
		if c == '\n' {
			s.upperCursorLine++
			s.upperCursorCol = 0
			continue
		}
		for len(s.upperLines) <= s.upperCursorLine {
			s.upperLines = append(s.upperLines, nil)
		}
		line := s.upperLines[s.upperCursorLine]
		for len(line) <= s.upperCursorCol {
			line = append(line, Cell{Ch: ' '})
		}
		line[s.upperCursorCol] = Cell{Style: s.style, Ch: c}
		s.upperLines[s.upperCursorLine] = line
		s.upperCursorCol++
	}
}

// EraseWindow implements `erase_window`. -1 clears both windows and
// unsplits the screen; -2 clears both windows but keeps the split.
func (s *Screen) EraseWindow(w int) {
	switch w {
	case -1:
		s.eraseLower()
		s.eraseUpper()
		s.requestedHeight = 0
		s.upperLines = nil
	case -2:
		s.eraseLower()
		s.eraseUpper()
	case int(Lower):
		s.eraseLower()
	case int(Upper):
		s.eraseUpper()
	}
}

func (s *Screen) eraseLower() {
	s.cleared = true
	s.lowerRuns = nil
}

func (s *Screen) eraseUpper() {
	for i := range s.upperLines {
		s.upperLines[i] = nil
	}
}

// DrainLowerOutput returns and clears the pending lower-window runs, the
// unit a host pulls on each Step() boundary.
func (s *Screen) DrainLowerOutput() []Run {
	s.cleared = false
	out := s.lowerRuns
	s.lowerRuns = nil
	return out
}

// UpperWindow returns the resolved upper-window grid, one []Cell per
// line, for a host renderer.
func (s *Screen) UpperWindow() [][]Cell {
	s.resolveUpperHeight()
	return s.upperLines
}

// SetStatusBar implements the v3 status-line opcode's derived text.
func (s *Screen) SetStatusBar(left, right string) {
	s.statusLeft, s.statusRight = left, right
	s.hasStatus = true
}

func (s *Screen) StatusBar() (left, right string, ok bool) {
	return s.statusLeft, s.statusRight, s.hasStatus
}

// ResolveColor maps a Z-machine colour number to an RGB triple. 0 means
// "current colour" (so isForeground picks between the active foreground
// and background), 1 means "default colour".
func (s *Screen) ResolveColor(n uint16, isForeground bool) Color {
	switch n {
	case 0:
		if isForeground {
			return s.foreground
		}
		return s.background
	case 1:
		if isForeground {
			return s.defaultForeground
		}
		return s.defaultBackground
	default:
		if c, ok := namedColors[n]; ok {
			return c
		}
		return Color{}
	}
}

// CurrentColors returns the active foreground/background, for a host
// renderer painting freshly drained output.
func (s *Screen) CurrentColors() (foreground, background Color) {
	return s.foreground, s.background
}

// SetColor implements `set_colour`/`set_true_colour` bookkeeping: the
// active foreground/background are tracked so a colour-aware frontend
// can render them (`cmd/zif` reads them via CurrentColors).
func (s *Screen) SetColor(foreground, background Color) {
	s.foreground, s.background = foreground, background
}
