package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/menuboard/internal/display"
	"github.com/desertthunder/menuboard/internal/typography"
)

// DayCheckInterval is how often the model asks the renderer whether the date changed.
var DayCheckInterval = time.Minute

// Model represents the terminal display state.
type Model struct {
	renderer *display.Renderer
	frames   chan display.Frame
	frame    display.Frame
	hasFrame bool
	width    int
	height   int
	showHelp bool
	help     help.Model
	keys     keyMap
}

// NewModel creates a model around a renderer built from cfg. cfg.OnFrame is replaced.
func NewModel(cfg display.Config) *Model {
	m := &Model{
		frames: make(chan display.Frame, 1),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	cfg.OnFrame = m.offer
	m.renderer = display.New(cfg)
	return m
}

// offer hands a frame to the bubbletea loop, replacing one it has not picked up yet.
func (m *Model) offer(f display.Frame) {
	for {
		select {
		case m.frames <- f:
			return
		default:
		}
		select {
		case <-m.frames:
		default:
		}
	}
}

// Init starts the renderer and the day check.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForFrame(), m.scheduleDayCheck())
}

// Stop releases the renderer's subscriptions.
func (m *Model) Stop() {
	m.renderer.Stop()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.Stop()
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgFrame:
			m.frame = msg.data.(display.Frame)
			m.hasFrame = true
			return m, m.waitForFrame()
		case MsgDayCheck:
			m.renderer.Tick()
			return m, m.scheduleDayCheck()
		}
	}
	return m, nil
}

// View renders the current frame.
func (m *Model) View() string {
	if !m.hasFrame {
		return ""
	}

	board := m.renderBoard()
	if m.showHelp {
		board = lipgloss.JoinVertical(lipgloss.Center, board, "", m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	if m.width == 0 || m.height == 0 {
		return board
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, board)
}

func (m *Model) renderBoard() string {
	f := m.frame
	p := NewPalette(f.Dark, f.Settings.OpacityLevel)

	width := 48
	if m.width > 0 {
		width = max(24, m.width*3/4)
	}

	lines := []string{p.heading.Render(strings.ToUpper(f.Heading))}
	for _, sec := range f.Sections {
		lines = append(lines, p.course.Render(strings.ToUpper(sec.Title)))
		lines = append(lines, m.dishStyle(p, sec.SizeClass).Width(width-8).Render(sec.Text))
	}
	lines = append(lines, p.footer.Render(f.Footer))

	return p.panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// dishStyle emphasizes the larger size classes; terminals cannot change font size.
func (m *Model) dishStyle(p *Palette, c typography.SizeClass) lipgloss.Style {
	style := p.dish
	if c.Rank() >= typography.Text7XL.Rank() {
		style = p.large
	}
	return style.Align(lipgloss.Center)
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		m.renderer.Start()
		return nil
	}
}

func (m *Model) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-m.frames)
	}
}

func (m *Model) scheduleDayCheck() tea.Cmd {
	return tea.Tick(DayCheckInterval, func(t time.Time) tea.Msg {
		return dayCheckMsg(t)
	})
}
