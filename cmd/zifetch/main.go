// Command zifetch fetches Z-machine story files from the IF-archive:
// either the whole zcode index in one batch (-all), or a single story
// picked interactively from a scrollable list.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aldermoor/zif/ifarchive"
)

var (
	fetchAll  bool
	outputDir string
)

func init() {
	flag.BoolVar(&fetchAll, "all", false, "download every story in the zcode index instead of picking one")
	flag.StringVar(&outputDir, "out", "stories", "directory to save downloaded story files to")
	flag.Parse()
}

func downloadAll() {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	c := &http.Client{Timeout: 30 * time.Second}
	games, err := ifarchive.FetchIndex(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Found %d games to download\n", len(games))

	var downloaded, skipped, failed int
	for i, game := range games {
		name := filepath.Base(game.URL)
		destPath := filepath.Join(outputDir, name)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Printf("[%d/%d] Skipping %s (already exists)\n", i+1, len(games), name)
			skipped++
			continue
		}

		fmt.Printf("[%d/%d] Downloading %s... ", i+1, len(games), name)
		data, err := ifarchive.Download(c, game.URL)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("OK (%d bytes)\n", len(data))
		downloaded++
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Printf("\nDone! Downloaded: %d, Skipped: %d, Failed: %d\n", downloaded, skipped, failed)

	var manifest strings.Builder
	for _, game := range games {
		manifest.WriteString(filepath.Base(game.URL) + "\n")
	}
	os.WriteFile(filepath.Join(outputDir, "manifest.txt"), []byte(manifest.String()), 0644)
}

// --- interactive single-story picker ---

type game struct{ ifarchive.Game }

func (g game) Title() string       { return g.Name }
func (g game) Description() string { return g.Game.Description }
func (g game) FilterValue() string { return g.Name }

type pickerState int

const (
	loading pickerState = iota
	choosing
	downloading
	done
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type pickerModel struct {
	state   pickerState
	list    list.Model
	spinner spinner.Model
	err     error
	savedTo string
}

type indexLoadedMsg []list.Item
type savedMsg string
type errMsg struct{ error }

func newPickerModel() pickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return pickerModel{
		state:   loading,
		list:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner: s,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return func() tea.Msg {
		games, err := ifarchive.FetchIndex(&http.Client{Timeout: 10 * time.Second})
		if err != nil {
			return errMsg{err}
		}
		items := make([]list.Item, len(games))
		for i, g := range games {
			items[i] = game{g}
		}
		return indexLoadedMsg(items)
	}
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if g, ok := m.list.SelectedItem().(game); ok {
				m.state = downloading
				return m, saveGame(g.Game)
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	case indexLoadedMsg:
		m.state = choosing
		m.list.SetShowStatusBar(false)
		m.list.SetShowTitle(false)
		return m, m.list.SetItems([]list.Item(msg))
	case savedMsg:
		m.state = done
		m.savedTo = string(msg)
		return m, tea.Quit
	case errMsg:
		m.err = msg
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.err != nil {
		return docStyle.Render(m.err.Error())
	}
	switch m.state {
	case loading:
		return fmt.Sprintf("\n\n   %s Loading index...\n\n", m.spinner.View())
	case choosing:
		return docStyle.Render(m.list.View())
	case downloading:
		return fmt.Sprintf("\n\n   %s Downloading...\n\n", m.spinner.View())
	case done:
		return fmt.Sprintf("\nSaved to %s\n", m.savedTo)
	default:
		return ""
	}
}

func saveGame(g ifarchive.Game) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return errMsg{err}
		}
		data, err := ifarchive.Download(&http.Client{Timeout: 60 * time.Second}, g.URL)
		if err != nil {
			return errMsg{err}
		}
		dest := filepath.Join(outputDir, filepath.Base(g.URL))
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return errMsg{err}
		}
		return savedMsg(dest)
	}
}

func main() {
	if fetchAll {
		downloadAll()
		return
	}

	if _, err := tea.NewProgram(newPickerModel()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error running picker:", err)
		os.Exit(1)
	}
}
