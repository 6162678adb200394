package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/ralphlabs/conductor/config"
	applogger "github.com/ralphlabs/conductor/internal/logger"
	"github.com/ralphlabs/conductor/internal/tasks"
	"github.com/ralphlabs/conductor/internal/ui/banner"
	"github.com/ralphlabs/conductor/internal/ui/theme"
)

// Model is the single-screen dashboard: banner, task table, worker-output
// tail, and a cost summary line. The tail is fed by AgentOutputMsg values
// (the Engine Loop's printed output via ChannelWriter). The task table and
// cost line show only what a LoopStateMsg carries, and the Engine Loop sends
// none, so during `run --tui` they show "no tasks loaded" and a zero cost.
type Model struct {
	appName   string
	altScreen bool
	isDark    bool
	quitting  bool

	width, height int
	palette       theme.ThemePalette
	bannerText    string

	state   LoopStateMsg
	tail    viewport.Model
	lines   []string
	done    bool
	loopErr error

	msgCh <-chan tea.Msg
}

// New constructs the dashboard Model, fed by msgCh (closed or simply
// abandoned when the engine loop exits; the final LoopDoneMsg/LoopErrorMsg
// is what actually stops the program).
func New(cfg config.Config, msgCh <-chan tea.Msg) Model {
	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true

	m := Model{
		appName:   cfg.App.Name,
		altScreen: cfg.UI.AltScreen,
		palette:   theme.NewPalette(true),
		tail:      vp,
		msgCh:     msgCh,
	}
	m.initBanner()
	return m
}

func (m *Model) initBanner() {
	rendered, err := banner.RenderBanner(banner.BannerConfig{Text: "CONDUCTOR", Font: "standard"}, 100)
	if err != nil {
		rendered = "CONDUCTOR"
	}
	m.bannerText = rendered
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgCh
		if !ok {
			return LoopDoneMsg{}
		}
		return msg
	}
}

// Init requests the background color and starts listening for engine events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.RequestBackgroundColor, m.listen())
}

// Update handles engine-loop messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tail.SetWidth(m.width)
		m.tail.SetHeight(m.tailHeight())

	case tea.BackgroundColorMsg:
		m.isDark = msg.IsDark()
		m.palette = theme.NewPalette(m.isDark)

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}

	case LoopStateMsg:
		m.state = msg
		return m, m.listen()

	case AgentOutputMsg:
		m.lines = append(m.lines, msg.Text)
		if len(m.lines) > 500 {
			m.lines = m.lines[len(m.lines)-500:]
		}
		m.tail.SetContent(strings.Join(m.lines, "\n"))
		m.tail.GotoBottom()
		return m, m.listen()

	case LoopDoneMsg:
		m.done = true
		applogger.Info().Msg("engine loop finished")
		return m, tea.Quit

	case LoopErrorMsg:
		m.done = true
		m.loopErr = msg.Err
		applogger.Error().Err(msg.Err).Msg("engine loop failed")
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.tail, cmd = m.tail.Update(msg)
	return m, cmd
}

func (m Model) tailHeight() int {
	h := m.height - lipgloss.Height(m.bannerText) - 4
	if h < 3 {
		h = 3
	}
	return h
}

// View renders the banner, task table, worker tail, and cost line.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	if m.width == 0 {
		return tea.NewView("starting...")
	}

	bannerStyle := lipgloss.NewStyle().Foreground(m.palette.Primary).Bold(true)
	content := lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(m.bannerText),
		m.renderTasks(),
		m.tail.View(),
		m.renderCostLine(),
	)

	v := tea.NewView(content)
	v.AltScreen = m.altScreen
	v.WindowTitle = m.appName
	return v
}

func (m Model) renderTasks() string {
	var b strings.Builder
	for _, t := range m.state.Tasks {
		icon, style := statusIconAndStyle(m.palette, t.Status)
		marker := " "
		if t.ID == m.state.CurrentTaskID {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s[%s] %s %s\n", marker, icon, t.ID, style.Render(t.Description))
	}
	if len(m.state.Tasks) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(m.palette.Subtle).Render("no tasks loaded"))
	}
	return b.String()
}

func statusIconAndStyle(p theme.ThemePalette, s tasks.Status) (string, lipgloss.Style) {
	switch s {
	case tasks.StatusCompleted:
		return "x", lipgloss.NewStyle().Foreground(p.StatusComplete)
	case tasks.StatusInProgress:
		return ">", lipgloss.NewStyle().Foreground(p.StatusRunning)
	case tasks.StatusFailed:
		return "!", lipgloss.NewStyle().Foreground(p.StatusFailed)
	case tasks.StatusSkipped:
		return "-", lipgloss.NewStyle().Foreground(p.StatusSkipped)
	default:
		return " ", lipgloss.NewStyle().Foreground(p.StatusPending)
	}
}

func (m Model) renderCostLine() string {
	return lipgloss.NewStyle().Foreground(m.palette.Muted).
		Render(fmt.Sprintf("cost so far: $%.4f", m.state.TotalCostUSD))
}

// Run starts the BubbleTea program for m and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
