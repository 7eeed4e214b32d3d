// Package storypicker is the "no -rom flag given" entry point: it
// browses the IF-archive's Z-code index in a list, downloads the chosen
// story, and hands the bytes off to build the interpreter's own model.
package storypicker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aldermoor/zif/ifarchive"
)

const cacheDuration = 7 * 24 * time.Hour

var docStyle = lipgloss.NewStyle().Margin(1, 2)

type pickerState int

const (
	loadingList pickerState = iota
	choosing
	downloading
)

type story struct {
	name        string
	releaseDate time.Time
	url         string
	description string
}

func (s story) Title() string       { return s.name }
func (s story) Description() string { return s.description }
func (s story) FilterValue() string { return s.name + s.description }

// CreateAppModel builds the interpreter's own bubbletea model once a
// story's bytes are in hand; romPath is a display name only (the ROM was
// downloaded, not read from a local path).
type CreateAppModel func(romPath string, data []byte) (tea.Model, error)

type Model struct {
	state      pickerState
	list       list.Model
	spinner    spinner.Model
	err        error
	createApp  CreateAppModel
	cacheDir   string
	selectedID string
}

type storiesLoadedMsg []list.Item
type storyDownloadedMsg struct {
	name string
	data []byte
}
type pickerErrMsg struct{ error }

func New(createApp CreateAppModel) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	cacheDir, _ := os.UserCacheDir()
	if cacheDir != "" {
		cacheDir = filepath.Join(cacheDir, "zif")
	}

	return Model{
		state:     loadingList,
		list:      list.New(nil, list.NewDefaultDelegate(), 0, 0),
		spinner:   s,
		createApp: createApp,
		cacheDir:  cacheDir,
	}
}

func (m Model) Init() tea.Cmd {
	return fetchStoryList(m.cacheDir)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if s, ok := m.list.SelectedItem().(story); ok {
				m.state = downloading
				m.selectedID = s.name
				return m, downloadStory(s, m.cacheDir)
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

	case storiesLoadedMsg:
		m.state = choosing
		m.list.SetShowStatusBar(false)
		m.list.SetShowTitle(false)
		return m, m.list.SetItems([]list.Item(msg))

	case storyDownloadedMsg:
		newModel, err := m.createApp(msg.name, msg.data)
		if err != nil {
			m.err = err
			return m, nil
		}
		return newModel, newModel.Init()

	case pickerErrMsg:
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

func (m Model) View() string {
	if m.err != nil {
		return docStyle.Render(m.err.Error())
	}
	switch m.state {
	case loadingList:
		return fmt.Sprintf("\n\n   %s Loading stories...\n\n", m.spinner.View())
	case choosing:
		return docStyle.Render(m.list.View())
	case downloading:
		return fmt.Sprintf("\n\n   %s Downloading %s...\n\n", m.spinner.View(), m.selectedID)
	default:
		return ""
	}
}

func cacheFilePath(cacheDir, key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(cacheDir, hex.EncodeToString(hash[:]))
}

func isCacheValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < cacheDuration
}

type cachedList struct {
	Stories []cachedStory `json:"stories"`
}

type cachedStory struct {
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
}

func downloadStory(s story, cacheDir string) tea.Cmd {
	return func() tea.Msg {
		if cacheDir != "" {
			path := cacheFilePath(cacheDir, s.url)
			if isCacheValid(path) {
				if data, err := os.ReadFile(path); err == nil {
					return storyDownloadedMsg{name: s.name, data: data}
				}
			}
		}

		c := &http.Client{Timeout: 60 * time.Second}
		data, err := ifarchive.Download(c, s.url)
		if err != nil {
			return pickerErrMsg{err}
		}

		if cacheDir != "" {
			if err := os.MkdirAll(cacheDir, 0755); err == nil {
				os.WriteFile(cacheFilePath(cacheDir, s.url), data, 0644)
			}
		}

		return storyDownloadedMsg{name: s.name, data: data}
	}
}

func fetchStoryList(cacheDir string) tea.Cmd {
	return func() tea.Msg {
		if cacheDir != "" {
			path := cacheFilePath(cacheDir, "storylist")
			if isCacheValid(path) {
				if data, err := os.ReadFile(path); err == nil {
					var cached cachedList
					if json.Unmarshal(data, &cached) == nil {
						return storiesLoadedMsg(toListItems(cached))
					}
				}
			}
		}

		c := &http.Client{Timeout: 10 * time.Second}
		games, err := ifarchive.FetchIndex(c)
		if err != nil {
			return pickerErrMsg{err}
		}

		stories := make([]story, len(games))
		for i, g := range games {
			stories[i] = story{name: g.Name, releaseDate: g.ReleaseDate, url: g.URL, description: g.Description}
		}

		if cacheDir != "" {
			if err := os.MkdirAll(cacheDir, 0755); err == nil {
				var cached cachedList
				for _, s := range stories {
					cached.Stories = append(cached.Stories, cachedStory{
						Name: s.name, ReleaseDate: s.releaseDate, URL: s.url, Description: s.description,
					})
				}
				if data, err := json.Marshal(cached); err == nil {
					os.WriteFile(cacheFilePath(cacheDir, "storylist"), data, 0644)
				}
			}
		}

		items := make([]list.Item, len(stories))
		for i, s := range stories {
			items[i] = s
		}
		return storiesLoadedMsg(items)
	}
}

func toListItems(cached cachedList) []list.Item {
	items := make([]list.Item, len(cached.Stories))
	for i, cs := range cached.Stories {
		items[i] = story{name: cs.Name, releaseDate: cs.ReleaseDate, url: cs.URL, description: cs.Description}
	}
	return items
}
