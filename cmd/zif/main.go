package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/aldermoor/zif/cmd/zif/internal/storypicker"
	"github.com/aldermoor/zif/zmachine"
)

var romFilePath string

func init() {
	flag.StringVar(&romFilePath, "rom", "", "path to a Z-machine story file")
	flag.Parse()
}

// keyToZChar maps a bubbletea key event to its ZSCII code per the
// standard's extended input character table (10.5.2.1): cursor keys,
// function keys, Enter and Delete. Unmapped keys resolve to 0, meaning
// "not a valid input character".
func keyToZChar(msg tea.KeyMsg) uint8 {
	switch msg.Type {
	case tea.KeyUp:
		return 129
	case tea.KeyDown:
		return 130
	case tea.KeyLeft:
		return 131
	case tea.KeyRight:
		return 132
	case tea.KeyF1:
		return 133
	case tea.KeyF2:
		return 134
	case tea.KeyF3:
		return 135
	case tea.KeyF4:
		return 136
	case tea.KeyF5:
		return 137
	case tea.KeyF6:
		return 138
	case tea.KeyF7:
		return 139
	case tea.KeyF8:
		return 140
	case tea.KeyF9:
		return 141
	case tea.KeyF10:
		return 142
	case tea.KeyF11:
		return 143
	case tea.KeyF12:
		return 144
	case tea.KeyEscape:
		return 27
	case tea.KeyEnter:
		return 13
	case tea.KeyDelete, tea.KeyBackspace:
		return 8
	default:
		return 0
	}
}

type runState int

const (
	running runState = iota
	waitingForLine
	waitingForChar
)

type stepMsg struct{ event zmachine.StepEvent }

func stepCmd(z *zmachine.ZMachine) tea.Cmd {
	return func() tea.Msg {
		return stepMsg{event: z.Step()}
	}
}

type storyModel struct {
	z           *zmachine.ZMachine
	romPath     string
	state       runState
	input       textinput.Model
	lowerText   strings.Builder
	statusLeft  string
	statusRight string
	width       int
	height      int
	fatalErr    string
	finished    bool
	lowerStyle  lipgloss.Style
	statusStyle lipgloss.Style
}

func newStoryModel(z *zmachine.ZMachine, romPath string) storyModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 200

	return storyModel{
		z:           z,
		romPath:     romPath,
		state:       running,
		input:       ti,
		lowerStyle:  lipgloss.NewStyle(),
		statusStyle: lipgloss.NewStyle().Reverse(true),
	}
}

func (m storyModel) Init() tea.Cmd {
	return tea.Batch(stepCmd(m.z), tea.SetWindowTitle(filepath.Base(m.romPath)))
}

func runStyle(s zmachine.TextStyle, base lipgloss.Style) lipgloss.Style {
	return base.
		Bold(s.Bold()).
		Italic(s.Italic()).
		Reverse(s.Reverse())
}

func (m *storyModel) drainOutput() {
	for _, run := range m.z.Screen.DrainLowerOutput() {
		fg, bg := m.z.Screen.CurrentColors()
		style := runStyle(run.Style, lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg.Hex())).
			Background(lipgloss.Color(bg.Hex())))
		m.lowerText.WriteString(style.Render(run.Text))
	}
	if left, right, ok := m.z.Screen.StatusBar(); ok {
		m.statusLeft, m.statusRight = left, right
	}
}

func (m storyModel) defaultSaveFilename() string {
	base := filepath.Base(m.romPath)
	ext := filepath.Ext(base)
	if len(ext) >= 2 && (ext[1] == 'z' || ext[1] == 'Z') {
		base = base[:len(base)-len(ext)]
	}
	return base + ".sav"
}

func (m storyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 1
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (m.finished && msg.String() == "enter") {
			return m, tea.Quit
		}
		switch m.state {
		case waitingForChar:
			m.state = running
			var zscii uint16
			if len(msg.Runes) > 0 {
				zscii = uint16(msg.Runes[0])
			} else {
				zscii = uint16(keyToZChar(msg))
			}
			m.z.ResumeReadChar(zscii)
			return m, stepCmd(m.z)
		case waitingForLine:
			if msg.Type == tea.KeyEnter {
				text := m.input.Value()
				m.lowerText.WriteString(m.lowerStyle.Render(text + "\n"))
				m.input.SetValue("")
				m.state = running
				m.z.ResumeReadLine(text)
				return m, stepCmd(m.z)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil

	case stepMsg:
		switch e := msg.event.(type) {
		case zmachine.Output:
			m.drainOutput()
			return m, stepCmd(m.z)
		case zmachine.ReadLine:
			m.drainOutput()
			m.state = waitingForLine
			m.input.SetValue(e.Preloaded)
			m.input.CharLimit = e.MaxLength
			return m, nil
		case zmachine.ReadChar:
			m.drainOutput()
			m.state = waitingForChar
			return m, nil
		case zmachine.SaveRequest:
			data := m.z.ExportSave()
			err := os.WriteFile(m.defaultSaveFilename(), data, 0644)
			m.z.ResumeSave(err == nil)
			return m, stepCmd(m.z)
		case zmachine.RestoreRequest:
			data, err := os.ReadFile(m.defaultSaveFilename())
			if err != nil {
				m.z.ResumeRestore(nil)
			} else {
				m.z.ResumeRestore(data)
			}
			return m, stepCmd(m.z)
		case zmachine.Warning:
			fmt.Fprintf(os.Stderr, "warning: %s\n", e.Message)
			return m, stepCmd(m.z)
		case zmachine.Done:
			if e.Err != nil {
				m.fatalErr = e.Err.Error()
			}
			m.finished = true
			return m, nil
		}
	}

	return m, nil
}

func (m storyModel) renderUpperWindow() string {
	grid := m.z.Screen.UpperWindow()
	if len(grid) == 0 {
		return ""
	}
	var b strings.Builder
	for _, row := range grid {
		var cur strings.Builder
		for _, c := range row {
			cur.WriteRune(c.Ch)
		}
		b.WriteString(cur.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (m storyModel) View() string {
	if m.fatalErr != "" {
		return fmt.Sprintf("\n%s\n\n%s\n",
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000")).Render("Z-machine error:"),
			m.fatalErr)
	}
	if m.width == 0 {
		return "Loading...\n"
	}

	var b strings.Builder
	if m.statusLeft != "" || m.statusRight != "" {
		gap := m.width - len(m.statusLeft) - len(m.statusRight)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(m.statusStyle.Width(m.width).Render(m.statusLeft + strings.Repeat(" ", gap) + m.statusRight))
		b.WriteByte('\n')
	} else {
		b.WriteString(m.renderUpperWindow())
	}

	body := wordwrap.String(m.lowerText.String(), m.width)
	lines := strings.Split(body, "\n")
	maxLines := m.height - 2
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	b.WriteString(strings.Join(lines, "\n"))

	if m.state == waitingForLine {
		b.WriteByte('\n')
		b.WriteString(m.input.View())
	}
	if m.finished {
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().Italic(true).Render("[The story has ended. Press enter to quit.]"))
	}

	return b.String()
}

func main() {
	var model tea.Model

	if romFilePath != "" {
		data, err := os.ReadFile(romFilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read story file: %v\n", err)
			os.Exit(1)
		}
		z, err := zmachine.LoadStory(data, zmachine.DefaultOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load story: %v\n", err)
			os.Exit(1)
		}
		model = newStoryModel(z, romFilePath)
	} else {
		model = storypicker.New(func(romPath string, data []byte) (tea.Model, error) {
			z, err := zmachine.LoadStory(data, zmachine.DefaultOptions())
			if err != nil {
				return nil, err
			}
			return newStoryModel(z, romPath), nil
		})
	}

	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error running program:", err)
		os.Exit(1)
	}
}
